package network

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

/*
该文件包含激活函数及其导数
激活函数作用于整个预激活矩阵（每一行对应一个样本），导数同样以预激活值z为输入
*/

// ActivationFunc 激活函数类型，输入为预激活矩阵，返回新的矩阵
type ActivationFunc func(z *mat.Dense) *mat.Dense

func elementwise(z *mat.Dense, fn func(float64) float64) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, z)
	return &out
}

// Sigmoid 激活函数
func Sigmoid(z *mat.Dense) *mat.Dense {
	return elementwise(z, sigmoid)
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// SigmoidDerivative sigmoid的导数 σ(z)(1-σ(z))
func SigmoidDerivative(z *mat.Dense) *mat.Dense {
	return elementwise(z, func(v float64) float64 {
		s := sigmoid(v)
		return s * (1 - s)
	})
}

// ReLU 激活函数
func ReLU(z *mat.Dense) *mat.Dense {
	return elementwise(z, func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// ReLUDerivative ReLU的导数，z=0处取0
func ReLUDerivative(z *mat.Dense) *mat.Dense {
	return elementwise(z, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
}

func Tanh(z *mat.Dense) *mat.Dense {
	return elementwise(z, math.Tanh)
}

func TanhDerivative(z *mat.Dense) *mat.Dense {
	return elementwise(z, func(v float64) float64 {
		t := math.Tanh(v)
		return 1 - t*t
	})
}

// Identity 恒等激活，用于线性输出层
func Identity(z *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(z)
}

func IdentityDerivative(z *mat.Dense) *mat.Dense {
	return elementwise(z, func(float64) float64 { return 1 })
}

// Softmax 按行计算softmax，先减去行最大值防止溢出
func Softmax(z *mat.Dense) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		maxVal := math.Inf(-1)
		for _, v := range row {
			maxVal = math.Max(maxVal, v)
		}
		sum := 0.0
		dst := out.RawRowView(i)
		for j, v := range row {
			dst[j] = math.Exp(v - maxVal)
			sum += dst[j]
		}
		for j := range dst {
			dst[j] /= sum
		}
	}
	return out
}

// SoftmaxDerivative 只返回雅可比矩阵的对角线 s(1-s)
func SoftmaxDerivative(z *mat.Dense) *mat.Dense {
	s := Softmax(z)
	s.Apply(func(_, _ int, v float64) float64 { return v * (1 - v) }, s)
	return s
}

type activationPair struct {
	fn    ActivationFunc
	prime ActivationFunc
}

var activations = map[string]activationPair{
	"sigmoid":  {Sigmoid, SigmoidDerivative},
	"relu":     {ReLU, ReLUDerivative},
	"tanh":     {Tanh, TanhDerivative},
	"identity": {Identity, IdentityDerivative},
	"softmax":  {Softmax, SoftmaxDerivative},
}

// ActivationByName 根据名称返回激活函数及其导数
func ActivationByName(name string) (ActivationFunc, ActivationFunc, error) {
	p, ok := activations[name]
	if !ok {
		return nil, nil, fmt.Errorf("激活函数 %q: %w", name, ErrNotFound)
	}
	return p.fn, p.prime, nil
}

// ActivationNames 返回所有已注册的激活函数名称（排序后）
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
