package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is one feature's route set, mounted under /api/v1 + Root().
type IHttpHandler interface {
	Root() string
	SetRoutes(r *gin.RouterGroup)
}
