package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

/*
该文件包含层参数的初始化和读取
第l层的权重负责从第l-1层到第l层的映射，因此输入层（第0层）没有权重和偏置
*/

// randomWeights 生成 outputSize*inputSize 的权重矩阵，元素服从[0,1)均匀分布
func randomWeights(inputSize, outputSize int, dist distuv.Uniform) *mat.Dense {
	data := make([]float64, outputSize*inputSize)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(outputSize, inputSize, data)
}

// randomBiases 生成长度为outputSize的偏置向量，元素服从[0,1)均匀分布
func randomBiases(outputSize int, dist distuv.Uniform) *mat.VecDense {
	data := make([]float64, outputSize)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewVecDense(outputSize, data)
}

// checkLayer 检查层索引是否指向一个带参数的层
func (nn *DNN) checkLayer(layer int) error {
	if layer < 1 || layer >= len(nn.Shape) {
		return fmt.Errorf("%w: %d（有效范围 1..%d）", ErrLayerIndex, layer, len(nn.Shape)-1)
	}
	return nil
}

// LayerWeights 返回第layer层权重矩阵的拷贝
func (nn *DNN) LayerWeights(layer int) (*mat.Dense, error) {
	if err := nn.checkLayer(layer); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(nn.Weights[layer]), nil
}

// LayerBiases 返回第layer层偏置向量的拷贝
func (nn *DNN) LayerBiases(layer int) (*mat.VecDense, error) {
	if err := nn.checkLayer(layer); err != nil {
		return nil, err
	}
	b := mat.NewVecDense(nn.Biases[layer].Len(), nil)
	b.CopyVec(nn.Biases[layer])
	return b, nil
}
