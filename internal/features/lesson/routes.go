package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	lessons := router.Group("/lesson", auth)

	lessons.GET("", handler.List)
	lessons.POST("", handler.Create)
	lessons.GET("/:id", handler.GetByID)
	lessons.PATCH("/:id", handler.Update)
}
