package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/priyxstudio/pub/docs/swagger"
)

//go:generate sh -c "cd .. && swag init --generalInfo router/docs.go --output docs/swagger --parseDependency --parseInternal --quiet"

// @title Pub API
// @version 1.0
// @description Manages modules generated from natural language descriptions.
// @BasePath /
// @schemes https http
// @securityDefinitions.apikey Token
// @description Supply the token from `config.yml` using the `Authorization: Bearer <token>` header.
// @in header
// @name Authorization
// @contact.name Priyx Studio
// @contact.url https://github.com/priyxstudio/pub
// @produce json

const documentPath = "/api/docs/openapi.json"

// registerDocumentationRoutes serves the OpenAPI document and a Swagger UI
// reading it under /api/docs. Nothing here requires authorization.
func registerDocumentationRoutes(router *gin.Engine) {
	docs := router.Group("/api/docs")

	docs.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swagger.SwaggerInfo.ReadDoc()))
	})

	index := func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/api/docs/ui/index.html")
	}
	docs.GET("", index)
	docs.GET("/ui", index)
	docs.GET("/ui/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(documentPath),
		ginSwagger.DocExpansion("list"),
		ginSwagger.PersistAuthorization(true),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))
}
