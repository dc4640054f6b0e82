package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DNNDev/cmd/DNNServer/server"
	"DNNDev/cmd/DNNServer/services"
	"DNNDev/pkg/participant"
	"DNNDev/pkg/setup"

	"github.com/gin-gonic/gin"
)

func main() {
	port := flag.String("port", "8080", "监听端口")
	mode := flag.String("mode", gin.DebugMode, "gin运行模式: debug, release, test")
	encrypted := flag.Bool("encrypted", false, "启用CKKS加密前向传播接口")
	flag.Parse()

	gin.SetMode(*mode)

	var party *participant.NNParty
	if *encrypted {
		params, err := setup.InitParameters()
		if err != nil {
			log.Fatalf("初始化CKKS参数失败: %v", err)
		}
		party = participant.NewNNParty(params)
	}

	registry := services.NewRegistry(party)
	hs := server.NewHTTPServer(*port, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("服务异常退出: %v", err)
		}
	case sig := <-sigCh:
		fmt.Printf("收到信号 %v，正在关闭服务...\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Stop(ctx); err != nil {
			log.Fatalf("关闭服务失败: %v", err)
		}
	}
}
