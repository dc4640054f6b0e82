package handlers

import (
	"fmt"

	"DNNDev/cmd/DNNServer/services"
	"DNNDev/cmd/DNNServer/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// 未设置CheckOrigin，跨域的升级请求会被拒绝
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

const (
	// 单条流消息最多携带的样本数
	maxStreamRows = 256
	// 单个数值在JSON中的最大估计字节数
	bytesPerValue = 32
)

// streamReadLimit 按网络输入层大小计算单条消息的读取上限
func streamReadLimit(shape []int) int64 {
	inputSize := 0
	if len(shape) > 0 {
		inputSize = shape[0]
	}
	return int64(inputSize)*maxStreamRows*bytesPerValue + 1024
}

// StreamHandler 通过websocket持续接收输入并返回输出层
// 每条消息为 PropagateRequest，回复为 StreamMessage
func StreamHandler(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		info, err := registry.Get(id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			fmt.Printf("websocket升级失败: %v\n", err)
			return
		}
		defer conn.Close()
		conn.SetReadLimit(streamReadLimit(info.Shape))

		for {
			var req utils.PropagateRequest
			if err := conn.ReadJSON(&req); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					fmt.Printf("网络 %s 的流连接中断: %v\n", id, err)
				}
				return
			}

			var msg utils.StreamMessage
			resp, err := registry.Propagate(id, req.Input, false)
			if err != nil {
				msg.Error = err.Error()
			} else {
				msg.Output = resp.Output
			}
			if err := conn.WriteJSON(msg); err != nil {
				fmt.Printf("网络 %s 的流写入失败: %v\n", id, err)
				return
			}
		}
	}
}
