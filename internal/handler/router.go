package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouteRegistrar interface {
	RegisterRoutes(r *gin.Engine)
}

// NewRouter 建立 gin engine 並掛上 /ping 與各 handler 的路由
func NewRouter(mode string, handlers ...RouteRegistrar) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}
	return router
}
