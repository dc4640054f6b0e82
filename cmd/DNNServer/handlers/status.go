package handlers

import (
	"net/http"

	"DNNDev/cmd/DNNServer/services"

	"github.com/gin-gonic/gin"
)

func GetStatusHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.Status())
	}
}
