package product

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches product endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	products := router.Group("/product", auth)

	products.GET("", handler.List)
	products.POST("", handler.Create)
	products.GET("/statisticks", handler.Statistics)
	products.GET("/statistics", handler.Statistics)
	products.GET("/:id", handler.GetByID)
	products.DELETE("/:id", handler.Delete)
}
