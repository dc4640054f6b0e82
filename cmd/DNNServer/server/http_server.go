package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"DNNDev/cmd/DNNServer/handlers"
	"DNNDev/cmd/DNNServer/services"

	"github.com/gin-gonic/gin"
)

// HTTPServer HTTP服务器
type HTTPServer struct {
	Router *gin.Engine
	Port   string

	srv *http.Server
}

// NewHTTPServer 创建新的HTTP服务器并注册路由
func NewHTTPServer(port string, registry *services.Registry) *HTTPServer {
	router := gin.Default()
	handlers.RegisterRoutes(router, registry)
	return &HTTPServer{
		Router: router,
		Port:   port,
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start 启动HTTP服务器，阻塞直到服务器关闭
func (hs *HTTPServer) Start() error {
	fmt.Printf("DNN服务启动，监听端口 %s\n", hs.Port)
	if err := hs.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭HTTP服务器
func (hs *HTTPServer) Stop(ctx context.Context) error {
	return hs.srv.Shutdown(ctx)
}

// GetRouter 获取路由器
func (hs *HTTPServer) GetRouter() *gin.Engine {
	return hs.Router
}
