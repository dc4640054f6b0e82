package handlers

import (
	"net/http"

	"DNNDev/cmd/DNNServer/services"
	"DNNDev/cmd/DNNServer/utils"

	"github.com/gin-gonic/gin"
)

func PropagateHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.PropagateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		resp, err := registry.Propagate(c.Param("id"), req.Input, req.WithLayers)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func PropagateEncryptedHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.PropagateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		resp, err := registry.PropagateEncrypted(c.Request.Context(), c.Param("id"), req.Input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func CostHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.CostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		cost, err := registry.EvaluateCost(c.Param("id"), req.Actual)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cost": cost})
	}
}
