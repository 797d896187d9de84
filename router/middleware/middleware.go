package middleware

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/modules"
)

// AttachRequestID attaches a unique ID to the incoming HTTP request so that any
// errors that are generated or returned to the client will include this reference
// allowing for an easier time identifying the specific request that failed for
// the user.
func AttachRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Set("logger", log.WithField("request_id", id))
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// CaptureErrors is global middleware that catches any errors that are attached
// to the request during its lifecycle and turns them into a response. Errors
// about missing or conflicting modules get their own status codes, anything
// else is logged and reported as an internal error.
func CaptureErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || err.Err == nil {
			return
		}
		if errors.Is(err.Err, io.EOF) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":      "The data passed in the request was not in a parsable format. Please try again.",
				"request_id": c.GetString("request_id"),
			})
			return
		}

		status, message := http.StatusInternalServerError, "An unexpected error was encountered while processing this request."
		switch {
		case modules.IsNotFound(err.Err):
			status, message = http.StatusNotFound, "The requested module does not exist."
		case modules.IsExists(err.Err):
			status, message = http.StatusConflict, "A module with that name already exists."
		default:
			ExtractLogger(c).WithField("error", err.Err).Error("unexpected error while processing request")
		}
		c.AbortWithStatusJSON(status, gin.H{
			"error":      message,
			"request_id": c.GetString("request_id"),
		})
	}
}

// CaptureAndAbort aborts the request and attaches the provided error to the gin
// context, so it can be reported properly. If the error is missing a stacktrace
// at the time it is called the stack will be attached.
func CaptureAndAbort(c *gin.Context, err error) {
	c.Abort()
	_ = c.Error(errors.WithStackDepthIf(err, 1))
}

// SetAccessControlHeaders sets the CORS headers for requests coming from one
// of the allowed origins.
func SetAccessControlHeaders() gin.HandlerFunc {
	origins := config.Get().AllowedOrigins
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Accept-Encoding, Authorization, Cache-Control, Content-Type, Content-Length, Origin, X-Real-IP, X-CSRF-Token")
		c.Header("Access-Control-Max-Age", "7200")

		o := c.GetHeader("Origin")
		for _, origin := range origins {
			if origin == "*" || origin == o {
				c.Header("Access-Control-Allow-Origin", o)
				break
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequireAuthorization ensures the request carries the token from the
// configuration as a bearer token.
func RequireAuthorization() gin.HandlerFunc {
	return func(c *gin.Context) {
		// We don't put this value outside this function since the authentication
		// token can be changed on the fly and the config.Get() call returns a copy, so
		// if it is rotated this value will never properly get updated.
		token := config.Get().AuthenticationToken
		auth := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(auth) != 2 || auth[0] != "Bearer" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "The required authorization heads were not present in the request."})
			return
		}
		if token == "" || subtle.ConstantTimeCompare([]byte(auth[1]), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not authorized to access this endpoint."})
			return
		}
		c.Next()
	}
}

// AttachRegistry attaches the module registry to the request context.
func AttachRegistry(r *modules.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("registry", r)
		c.Next()
	}
}

// ModuleExists ensures the module named in the path exists and attaches it
// to the request context.
func ModuleExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("module")
		m, ok := ExtractRegistry(c).Get(name)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "The requested module does not exist."})
			return
		}
		c.Set("module", m)
		c.Set("logger", ExtractLogger(c).WithField("module", name))
		c.Next()
	}
}

// ExtractLogger pulls the logger out of the request context and returns it. By
// default this will include the request ID, but may also contain the module
// name if that middleware has been used in the chain by the time it is called.
func ExtractLogger(c *gin.Context) *log.Entry {
	v, ok := c.Get("logger")
	if !ok {
		panic("middleware/middleware: cannot extract logger: not present in request context")
	}
	return v.(*log.Entry)
}

// ExtractRegistry returns the module registry attached to the request.
func ExtractRegistry(c *gin.Context) *modules.Registry {
	v, ok := c.Get("registry")
	if !ok {
		panic("middleware/middleware: cannot extract registry: not present in request context")
	}
	return v.(*modules.Registry)
}

// ExtractModule returns the module attached by ModuleExists.
func ExtractModule(c *gin.Context) modules.Module {
	v, ok := c.Get("module")
	if !ok {
		panic("middleware/middleware: cannot extract module: not present in request context")
	}
	return v.(modules.Module)
}
