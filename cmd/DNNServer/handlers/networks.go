package handlers

import (
	"net/http"

	"DNNDev/cmd/DNNServer/services"
	"DNNDev/cmd/DNNServer/utils"

	"github.com/gin-gonic/gin"
)

func CreateNetworkHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.CreateNetworkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		info, err := registry.Create(req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, info)
	}
}

func ListNetworksHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, registry.List())
	}
}

func GetNetworkHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := registry.Get(c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func DeleteNetworkHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := registry.Delete(c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
