package utils

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

var ErrRagged = errors.New("矩阵各行长度不一致")

// CreateNetworkRequest 创建网络的请求
type CreateNetworkRequest struct {
	Shape      []int   `json:"shape" binding:"required"`
	Seed       *uint64 `json:"seed,omitempty"`
	Activation string  `json:"activation,omitempty"`
	Cost       string  `json:"cost,omitempty"`
}

// NetworkInfo 网络的概要信息
type NetworkInfo struct {
	ID         string    `json:"id"`
	Shape      []int     `json:"shape"`
	Activation string    `json:"activation,omitempty"`
	Cost       string    `json:"cost,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LayerParams 单层的权重和偏置
type LayerParams struct {
	Layer   int         `json:"layer"`
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

type WeightsRequest struct {
	Weights [][]float64 `json:"weights" binding:"required"`
}

type BiasesRequest struct {
	Biases []float64 `json:"biases" binding:"required"`
}

// NameRequest 按名称设置激活函数或代价函数
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

// PropagateRequest 前向传播请求，每一行对应一个样本
type PropagateRequest struct {
	Input      [][]float64 `json:"input"`
	WithLayers bool        `json:"with_layers,omitempty"`
}

type PropagateResponse struct {
	Output [][]float64   `json:"output"`
	Layers [][][]float64 `json:"layers,omitempty"`
}

type CostRequest struct {
	Actual [][]float64 `json:"actual" binding:"required"`
}

// StreamMessage websocket上每条回复的结构
type StreamMessage struct {
	Output [][]float64 `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// StatusResponse 服务状态
type StatusResponse struct {
	Networks    int      `json:"networks"`
	Activations []string `json:"activations"`
	Costs       []string `json:"costs"`
	Encrypted   bool     `json:"encrypted"`
}

// ToDense 将二维切片转换为矩阵
func ToDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: 矩阵为空", ErrRagged)
	}
	cols := len(rows[0])
	m := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: 第 %d 行长度为 %d，期望 %d", ErrRagged, i, len(row), cols)
		}
		m.SetRow(i, row)
	}
	return m, nil
}

// FromDense 将矩阵转换为二维切片
func FromDense(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}
