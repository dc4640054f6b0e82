package network

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

/*
该文件包含整个神经网络的初始化方法以及参数、激活函数、代价函数的设置
*/

// DNN 稠密前馈神经网络
// 例如输入层3个节点，两个隐藏层分别为3和2个节点，输出层2个节点，则 Shape = [3,3,2,2]
type DNN struct {
	Shape   []int
	Layers  []*mat.Dense    // 每一层的节点值，每一行对应一个样本
	Weights []*mat.Dense    // Weights[l] 大小为 Shape[l]*Shape[l-1]，Weights[0]为nil
	Biases  []*mat.VecDense // Biases[l] 长度为 Shape[l]，Biases[0]为nil

	activation      ActivationFunc
	activationPrime ActivationFunc
	cost            CostFunc
	costPrime       CostPrimeFunc

	// 通过名称设置时记录，便于展示
	ActivationName string
	CostName       string
}

// NewDNN 按给定形状创建网络，权重和偏置服从[0,1)均匀分布
// src 为nil时使用当前时间作为随机种子
func NewDNN(shape []int, src rand.Source) (*DNN, error) {
	for i, size := range shape {
		if size <= 0 {
			return nil, fmt.Errorf("%w: 第 %d 层为 %d", ErrLayerSize, i, size)
		}
	}
	if src == nil {
		src = rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	}
	dist := distuv.Uniform{Min: 0, Max: 1, Src: src}

	nn := &DNN{
		Shape:   append([]int(nil), shape...),
		Layers:  make([]*mat.Dense, len(shape)),
		Weights: make([]*mat.Dense, len(shape)),
		Biases:  make([]*mat.VecDense, len(shape)),
	}
	for l, size := range shape {
		nn.Layers[l] = mat.NewDense(1, size, nil)
	}
	for l := 1; l < len(shape); l++ {
		nn.Weights[l] = randomWeights(shape[l-1], shape[l], dist)
		nn.Biases[l] = randomBiases(shape[l], dist)
	}
	return nn, nil
}

// SetLayerWeights 设置第layer层的权重矩阵
// 第i层的权重对应从第i-1层到第i层的映射，尺寸必须与原矩阵一致
func (nn *DNN) SetLayerWeights(layer int, weight *mat.Dense) error {
	if err := nn.checkLayer(layer); err != nil {
		return err
	}
	wr, wc := nn.Weights[layer].Dims()
	if weight == nil || weight.IsEmpty() {
		return fmt.Errorf("%w: 需要 %dx%d", ErrWeightSize, wr, wc)
	}
	r, c := weight.Dims()
	if r != wr || c != wc {
		return fmt.Errorf("%w: 需要 %dx%d，得到 %dx%d", ErrWeightSize, wr, wc, r, c)
	}
	nn.Weights[layer] = mat.DenseCopyOf(weight)
	return nil
}

// SetLayerBiases 设置第layer层的偏置向量
func (nn *DNN) SetLayerBiases(layer int, bias *mat.VecDense) error {
	if err := nn.checkLayer(layer); err != nil {
		return err
	}
	want := nn.Biases[layer].Len()
	if bias == nil || bias.IsEmpty() {
		return fmt.Errorf("%w: 需要长度 %d", ErrBiasSize, want)
	}
	if bias.Len() != want {
		return fmt.Errorf("%w: 需要长度 %d，得到 %d", ErrBiasSize, want, bias.Len())
	}
	b := mat.NewVecDense(want, nil)
	b.CopyVec(bias)
	nn.Biases[layer] = b
	return nil
}

// SetActivationFunction 设置激活函数及其导数
// 导数用于之后的参数优化，前向传播不使用
func (nn *DNN) SetActivationFunction(activation, activationPrime ActivationFunc) {
	nn.activation = activation
	nn.activationPrime = activationPrime
	nn.ActivationName = ""
}

// SetCost 设置代价函数及其导数，二者均为 f(actual, estimated)
func (nn *DNN) SetCost(cost CostFunc, costPrime CostPrimeFunc) {
	nn.cost = cost
	nn.costPrime = costPrime
	nn.CostName = ""
}

// SetActivationByName 使用已注册的激活函数
func (nn *DNN) SetActivationByName(name string) error {
	fn, prime, err := ActivationByName(name)
	if err != nil {
		return err
	}
	nn.SetActivationFunction(fn, prime)
	nn.ActivationName = name
	return nil
}

// SetCostByName 使用已注册的代价函数
func (nn *DNN) SetCostByName(name string) error {
	fn, prime, err := CostByName(name)
	if err != nil {
		return err
	}
	nn.SetCost(fn, prime)
	nn.CostName = name
	return nil
}

// Activation 返回当前的激活函数及其导数
func (nn *DNN) Activation() (ActivationFunc, ActivationFunc) {
	return nn.activation, nn.activationPrime
}

// Cost 返回当前的代价函数及其导数
func (nn *DNN) Cost() (CostFunc, CostPrimeFunc) {
	return nn.cost, nn.costPrime
}

func (nn *DNN) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "网络结构: %v\n", nn.Shape)
	for l := 1; l < len(nn.Shape); l++ {
		fmt.Fprintf(&sb, "第 %d 层: %d -> %d\n", l, nn.Shape[l-1], nn.Shape[l])
	}
	return sb.String()
}
