package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/modules"
	"github.com/priyxstudio/pub/router/middleware"
	"github.com/priyxstudio/pub/system"
)

// SystemInformationResponse describes the host and the modules running on it.
type SystemInformationResponse struct {
	system.Information
	Modules ModuleCounts `json:"modules"`
}

// ModuleCounts is the number of registered modules in each state.
type ModuleCounts struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Pending int `json:"pending"`
	Running int `json:"running"`
}

// Host information doesn't change while the daemon runs, so it is only read
// every so often.
var systemInformation = cache.New(5*time.Minute, 10*time.Minute)

type postUpdateConfigurationResponse struct {
	Applied bool `json:"applied"`
}

// getSystemInformation returns information about the system the daemon is
// running on.
// @Summary Get system information
// @Tags System
// @Produce json
// @Success 200 {object} router.SystemInformationResponse
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/system [get]
func getSystemInformation(c *gin.Context) {
	var i *system.Information
	if v, ok := systemInformation.Get("information"); ok {
		i = v.(*system.Information)
	} else {
		var err error
		if i, err = system.GetSystemInformation(); err != nil {
			middleware.CaptureAndAbort(c, err)
			return
		}
		systemInformation.SetDefault("information", i)
	}

	var counts ModuleCounts
	for _, m := range middleware.ExtractRegistry(c).Modules() {
		counts.Total++
		switch v := m.(type) {
		case *modules.ValidModule:
			counts.Valid++
			if v.Running() {
				counts.Running++
			}
		case *modules.InvalidModule:
			counts.Invalid++
		case *modules.PendingModule:
			counts.Pending++
		}
	}
	c.JSON(http.StatusOK, SystemInformationResponse{Information: *i, Modules: counts})
}

// getSystemUtilization returns the current load of the host.
// @Summary Get system utilization
// @Tags System
// @Produce json
// @Success 200 {object} system.Utilization
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/system/utilization [get]
func getSystemUtilization(c *gin.Context) {
	u, err := system.GetSystemUtilization(config.Get().System.RootDirectory)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// postUpdateConfiguration updates the configuration of the daemon and writes
// it to disk. The authentication token and the generator API key can't be
// changed this way. Generator and module settings apply after a restart.
// @Summary Update configuration
// @Tags System
// @Accept json
// @Produce json
// @Param config body config.Configuration true "Updated configuration"
// @Success 200 {object} postUpdateConfigurationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/update [post]
func postUpdateConfiguration(c *gin.Context) {
	cfg := config.Get()
	if err := c.BindJSON(&cfg); err != nil {
		return
	}

	// Try to write this new configuration to the disk before updating our global
	// state with it.
	if err := config.WriteConfigWithComments(cfg); err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	config.Set(cfg)
	c.JSON(http.StatusOK, postUpdateConfigurationResponse{Applied: true})
}
