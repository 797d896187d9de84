package router

import (
	"net/http"
	"os"
	"sort"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/router/middleware"
)

// ConfigPatchRequest defines the payload for patching specific config values using dot notation.
type ConfigPatchRequest struct {
	Updates map[string]interface{} `json:"updates" binding:"required"` // Map of dot-notation paths to values, e.g. {"api.port": 8080, "generator.model": "gpt-4o"}
}

// ConfigUpdateResponse conveys the outcome of a configuration update.
type ConfigUpdateResponse struct {
	Applied      bool   `json:"applied"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// getConfigRaw returns the raw YAML configuration file with comments preserved.
// @Summary Get raw configuration
// @Tags Configuration
// @Produce application/x-yaml
// @Success 200 {string} string "Raw YAML configuration file"
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/config [get]
func getConfigRaw(c *gin.Context) {
	content, err := os.ReadFile(configPath())
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", content)
}

// patchConfig updates specific configuration values using dot notation paths.
// Only scalar values can be set. Generator and module settings apply after a
// restart.
// @Summary Patch configuration values
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body router.ConfigPatchRequest true "Configuration patch request"
// @Success 200 {object} router.ConfigUpdateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/config [patch]
func patchConfig(c *gin.Context) {
	var req ConfigPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload"})
		return
	}

	// Apply the updates in a stable order so a failure always leaves the
	// same keys written.
	keys := make([]string, 0, len(req.Updates))
	for k := range req.Updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	path := configPath()
	for _, key := range keys {
		var value string
		switch v := req.Updates[key].(type) {
		case string:
			value = v
		case bool:
			value = strconv.FormatBool(v)
		case float64:
			value = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "value of '" + key + "' must be a string, number or boolean"})
			return
		}
		if err := config.SetValue(path, key, value); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "failed to update path '" + key + "': " + err.Error()})
			return
		}
	}

	// Try to reload configuration from file to update the in-memory state.
	// The file was written either way.
	if err := config.FromFile(path); err != nil {
		log.WithError(err).Warn("config file updated successfully but failed to reload - daemon may need restart")
		c.JSON(http.StatusOK, ConfigUpdateResponse{Applied: true, ErrorMessage: "configuration was written but could not be reloaded"})
		return
	}
	c.JSON(http.StatusOK, ConfigUpdateResponse{Applied: true})
}

func configPath() string {
	if p := config.Get().Path(); p != "" {
		return p
	}
	return config.GetDefaultConfigLocation()
}
