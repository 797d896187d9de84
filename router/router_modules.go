package router

import (
	"io"
	"net/http"

	"emperror.dev/errors"
	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pub/modules"
	"github.com/priyxstudio/pub/router/middleware"
)

// bind decodes the request body into v and validates it. If anything is wrong
// the request is aborted with a 400 and false is returned.
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", RequestID: c.GetString("request_id")})
		return false
	}
	if _, err := govalidator.ValidateStruct(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), RequestID: c.GetString("request_id")})
		return false
	}
	return true
}

// getModules returns every registered module.
// @Summary List modules
// @Tags Modules
// @Produce json
// @Success 200 {object} router.ModuleListResponse
// @Security Token
// @Router /api/modules [get]
func getModules(c *gin.Context) {
	all := middleware.ExtractRegistry(c).Modules()

	data := make([]ModuleSummary, 0, len(all))
	for _, m := range all {
		data = append(data, summarize(m))
	}
	c.JSON(http.StatusOK, ModuleListResponse{Data: data})
}

// postModules generates and registers a new module. The broken modules are
// regenerated in the background afterwards.
// @Summary Create module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module body router.ModuleDefinitionRequest true "Module definition"
// @Success 201 {object} router.ModuleDetails
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security Token
// @Router /api/modules [post]
func postModules(c *gin.Context) {
	var req ModuleDefinitionRequest
	if !bind(c, &req) {
		return
	}
	m, err := middleware.ExtractRegistry(c).AddModule(c.Request.Context(), req.Definition())
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusCreated, describe(m))
}

// getModule returns a single module, including the output it produced.
// @Summary Get module
// @Tags Modules
// @Produce json
// @Param module path string true "Module name"
// @Success 200 {object} router.ModuleDetails
// @Failure 404 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module} [get]
func getModule(c *gin.Context) {
	c.JSON(http.StatusOK, describe(middleware.ExtractModule(c)))
}

// putModule regenerates a module from a new definition, which may carry a
// new name. Every other module is regenerated in the background afterwards.
// @Summary Change module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module name"
// @Param definition body router.ModuleDefinitionRequest true "Module definition"
// @Success 200 {object} router.ModuleDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module} [put]
func putModule(c *gin.Context) {
	var req ModuleDefinitionRequest
	if !bind(c, &req) {
		return
	}
	m, err := middleware.ExtractModule(c).Change(c.Request.Context(), req.Definition())
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(m))
}

// deleteModule removes a module. The remaining modules are regenerated in the
// background afterwards.
// @Summary Delete module
// @Tags Modules
// @Param module path string true "Module name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module} [delete]
func deleteModule(c *gin.Context) {
	if err := middleware.ExtractModule(c).Delete(); err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// postModuleRename moves a module to a new name.
// @Summary Rename module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module name"
// @Param request body router.RenameModuleRequest true "New name"
// @Success 200 {object} router.ModuleDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module}/rename [post]
func postModuleRename(c *gin.Context) {
	var req RenameModuleRequest
	if !bind(c, &req) {
		return
	}
	m, err := middleware.ExtractModule(c).Rename(req.Name)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(m))
}

// postModuleFix fixes a module that is not valid. Invalid modules are fixed
// from their errors; pending modules need a new definition in the body.
// @Summary Fix module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module name"
// @Param request body router.FixModuleRequest false "New definition for pending modules"
// @Success 200 {object} router.ModuleDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module}/fix [post]
func postModuleFix(c *gin.Context) {
	var (
		m   modules.Module
		err error
	)
	switch v := middleware.ExtractModule(c).(type) {
	case *modules.InvalidModule:
		m, err = v.Fix(c.Request.Context())
	case *modules.PendingModule:
		var req FixModuleRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request payload", RequestID: c.GetString("request_id")})
			return
		}
		if req.Definition == nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "pending modules need a new definition to be fixed"})
			return
		}
		if _, verr := govalidator.ValidateStruct(req.Definition); verr != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: verr.Error()})
			return
		}
		m, err = v.Fix(c.Request.Context(), req.Definition.Definition())
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "valid modules can't be fixed"})
		return
	}
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(m))
}

// postModuleAdjust asks for an adjustment of the code of a valid module.
// @Summary Adjust module
// @Tags Modules
// @Accept json
// @Produce json
// @Param module path string true "Module name"
// @Param request body router.AdjustModuleRequest true "Adjustment instructions"
// @Success 200 {object} router.ModuleDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module}/adjust [post]
func postModuleAdjust(c *gin.Context) {
	v, ok := middleware.ExtractModule(c).(*modules.ValidModule)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "only valid modules can be adjusted"})
		return
	}
	var req AdjustModuleRequest
	if !bind(c, &req) {
		return
	}
	m, err := v.Adjust(c.Request.Context(), req.Instructions)
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(m))
}

// postModuleRecreate regenerates a module from its current definition
// without touching the other modules.
// @Summary Recreate module
// @Tags Modules
// @Produce json
// @Param module path string true "Module name"
// @Success 200 {object} router.ModuleDetails
// @Failure 404 {object} ErrorResponse
// @Security Token
// @Router /api/modules/{module}/recreate [post]
func postModuleRecreate(c *gin.Context) {
	m, err := middleware.ExtractModule(c).Recreate(c.Request.Context())
	if err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	c.JSON(http.StatusOK, describe(m))
}

// postReload drops every module, loads them again from the store and
// activates them.
// @Summary Reload modules
// @Tags Modules
// @Produce json
// @Success 200 {object} router.ModuleListResponse
// @Failure 500 {object} ErrorResponse
// @Security Token
// @Router /api/reload [post]
func postReload(c *gin.Context) {
	r := middleware.ExtractRegistry(c)
	if err := r.Load(c.Request.Context()); err != nil {
		middleware.CaptureAndAbort(c, err)
		return
	}
	r.Activate()
	getModules(c)
}
