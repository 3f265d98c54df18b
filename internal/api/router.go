// internal/api/router.go
package api

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// registerValidations adds the custom binding rules used by request structs.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierRe.MatchString(fl.Field().String())
		})
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handlers, authTokens map[string]string, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidations()

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware())

	r.GET("/health", h.Health)

	authed := r.Group("/api", AuthMiddleware(authTokens, NewResponseHelper()))
	{
		authed.POST("/breakdown/normalize", h.NormalizeBreakdown)
		authed.POST("/narrative/decide", h.Decide)
		authed.POST("/narrative/validate", h.Validate)
		authed.GET("/projects/:id/jobs", h.ListJobs)
		authed.GET("/projects/:id/jobs/ws", h.SubscribeJobs)
	}

	return r
}
