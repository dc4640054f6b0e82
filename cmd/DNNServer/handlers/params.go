package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"DNNDev/cmd/DNNServer/services"
	"DNNDev/cmd/DNNServer/utils"

	"github.com/gin-gonic/gin"
)

func layerParam(c *gin.Context) (int, bool) {
	layer, err := strconv.Atoi(c.Param("layer"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid layer %q", c.Param("layer"))})
		return 0, false
	}
	return layer, true
}

func GetLayerHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		layer, ok := layerParam(c)
		if !ok {
			return
		}
		params, err := registry.LayerParams(c.Param("id"), layer)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, params)
	}
}

func PutWeightsHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		layer, ok := layerParam(c)
		if !ok {
			return
		}
		var req utils.WeightsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := registry.SetWeights(c.Param("id"), layer, req.Weights); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

func PutBiasesHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		layer, ok := layerParam(c)
		if !ok {
			return
		}
		var req utils.BiasesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := registry.SetBiases(c.Param("id"), layer, req.Biases); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	}
}

func PutActivationHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := registry.SetActivation(c.Param("id"), req.Name); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated", "activation": req.Name})
	}
}

func PutCostHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req utils.NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := registry.SetCost(c.Param("id"), req.Name); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "updated", "cost": req.Name})
	}
}
