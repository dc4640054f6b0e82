package handlers

import (
	"DNNDev/cmd/DNNServer/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由处理器
func RegisterRoutes(r gin.IRouter, registry *services.Registry) {
	r.GET("/status", GetStatusHandler(registry))

	r.POST("/networks", CreateNetworkHandler(registry))
	r.GET("/networks", ListNetworksHandler(registry))
	r.GET("/networks/:id", GetNetworkHandler(registry))
	r.DELETE("/networks/:id", DeleteNetworkHandler(registry))

	r.GET("/networks/:id/layers/:layer", GetLayerHandler(registry))
	r.PUT("/networks/:id/layers/:layer/weights", PutWeightsHandler(registry))
	r.PUT("/networks/:id/layers/:layer/biases", PutBiasesHandler(registry))
	r.PUT("/networks/:id/activation", PutActivationHandler(registry))
	r.PUT("/networks/:id/cost", PutCostHandler(registry))

	r.POST("/networks/:id/propagate", PropagateHandler(registry))
	r.POST("/networks/:id/propagate/encrypted", PropagateEncryptedHandler(registry))
	r.POST("/networks/:id/cost", CostHandler(registry))
	r.GET("/networks/:id/stream", StreamHandler(registry))
}
