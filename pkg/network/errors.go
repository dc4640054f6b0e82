package network

import "errors"

var (
	ErrLayerSize    = errors.New("层节点数必须为正数")
	ErrLayerIndex   = errors.New("层索引越界")
	ErrWeightSize   = errors.New("权重矩阵尺寸不正确")
	ErrBiasSize     = errors.New("偏置向量尺寸不正确")
	ErrInputSize    = errors.New("输入维度与输入层节点数不一致")
	ErrEmptyNetwork = errors.New("网络没有任何层")
	ErrNoActivation = errors.New("未设置激活函数")
	ErrNoCost       = errors.New("未设置代价函数")
	ErrNotFound     = errors.New("未知的函数名称")
)
