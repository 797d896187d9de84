package router

import (
	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/modules"
	"github.com/priyxstudio/pub/router/middleware"
)

// Configure configures the routing infrastructure for this daemon instance.
func Configure(r *modules.Registry) *gin.Engine {
	gin.SetMode("release")

	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(config.Get().Api.TrustedProxies); err != nil {
		panic(errors.WithStack(err))
	}
	router.Use(middleware.AttachRequestID(), middleware.CaptureErrors(), middleware.SetAccessControlHeaders())
	router.Use(middleware.AttachRegistry(r))
	// This should still dump requests in debug mode since it does help with understanding the request
	// lifecycle and quickly seeing what was called leading to the logs.
	router.Use(gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		log.WithFields(log.Fields{
			"client_ip":  params.ClientIP,
			"status":     params.StatusCode,
			"latency":    params.Latency,
			"request_id": params.Keys["request_id"],
		}).Debugf("%s %s", params.MethodColor()+params.Method+params.ResetColor(), params.Path)

		return ""
	}))

	// Public documentation endpoints
	if config.Get().Api.Docs.Enabled {
		registerDocumentationRoutes(router)
	}

	// All the routes beyond this mount will use an authorization middleware
	// and will not be accessible without the correct Authorization header provided.
	protected := router.Group("")
	protected.Use(middleware.RequireAuthorization())
	protected.GET("/api/system", getSystemInformation)
	protected.GET("/api/system/utilization", getSystemUtilization)
	protected.POST("/api/update", postUpdateConfiguration)
	protected.GET("/api/config", getConfigRaw)
	protected.PATCH("/api/config", patchConfig)
	protected.POST("/api/reload", postReload)

	protected.GET("/api/modules", getModules)
	protected.POST("/api/modules", postModules)

	module := protected.Group("/api/modules/:module")
	module.Use(middleware.ModuleExists())
	{
		module.GET("", getModule)
		module.PUT("", putModule)
		module.DELETE("", deleteModule)

		module.POST("/rename", postModuleRename)
		module.POST("/fix", postModuleFix)
		module.POST("/adjust", postModuleAdjust)
		module.POST("/recreate", postModuleRecreate)
	}

	return router
}
