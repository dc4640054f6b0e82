package handlers

import (
	"errors"
	"net/http"

	"DNNDev/cmd/DNNServer/services"

	"github.com/gin-gonic/gin"
)

// statusFor 将服务层错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNetworkNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoEncryption):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
