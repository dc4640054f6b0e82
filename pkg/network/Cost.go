package network

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

/*
该文件包含代价函数及其对估计值的导数
代价函数的参数顺序固定为 cost(actual, estimated)，每一行对应一个样本
*/

// CostFunc 代价函数类型
type CostFunc func(actual, estimated mat.Matrix) float64

// CostPrimeFunc 代价函数对估计值的导数
type CostPrimeFunc func(actual, estimated mat.Matrix) *mat.Dense

// 防止log(0)
const logEpsilon = 1e-10

// huber损失的分段阈值
const huberDelta = 1.0

func numElements(m mat.Matrix) float64 {
	r, c := m.Dims()
	return float64(r * c)
}

func numRows(m mat.Matrix) float64 {
	r, _ := m.Dims()
	return float64(r)
}

// residual 计算 estimated - actual
func residual(actual, estimated mat.Matrix) *mat.Dense {
	var d mat.Dense
	d.Sub(estimated, actual)
	return &d
}

// MeanSquaredError 所有元素平方误差的平均值
func MeanSquaredError(actual, estimated mat.Matrix) float64 {
	d := residual(actual, estimated)
	d.MulElem(d, d)
	return mat.Sum(d) / numElements(d)
}

func MeanSquaredErrorPrime(actual, estimated mat.Matrix) *mat.Dense {
	d := residual(actual, estimated)
	d.Scale(2/numElements(d), d)
	return d
}

// CrossEntropy 交叉熵损失，按样本数取平均
func CrossEntropy(actual, estimated mat.Matrix) float64 {
	var l mat.Dense
	l.Apply(func(i, j int, v float64) float64 {
		return -actual.At(i, j) * math.Log(math.Max(v, logEpsilon))
	}, estimated)
	return mat.Sum(&l) / numRows(estimated)
}

func CrossEntropyPrime(actual, estimated mat.Matrix) *mat.Dense {
	n := numRows(estimated)
	var g mat.Dense
	g.Apply(func(i, j int, v float64) float64 {
		return -actual.At(i, j) / math.Max(v, logEpsilon) / n
	}, estimated)
	return &g
}

// AbsoluteError 平均绝对误差
func AbsoluteError(actual, estimated mat.Matrix) float64 {
	d := residual(actual, estimated)
	d.Apply(func(_, _ int, v float64) float64 { return math.Abs(v) }, d)
	return mat.Sum(d) / numElements(d)
}

func AbsoluteErrorPrime(actual, estimated mat.Matrix) *mat.Dense {
	d := residual(actual, estimated)
	n := numElements(d)
	d.Apply(func(_, _ int, v float64) float64 {
		switch {
		case v > 0:
			return 1 / n
		case v < 0:
			return -1 / n
		}
		return 0
	}, d)
	return d
}

// Huber 平滑的绝对误差，|d|<=1时为二次
func Huber(actual, estimated mat.Matrix) float64 {
	d := residual(actual, estimated)
	d.Apply(func(_, _ int, v float64) float64 {
		a := math.Abs(v)
		if a <= huberDelta {
			return 0.5 * v * v
		}
		return huberDelta * (a - 0.5*huberDelta)
	}, d)
	return mat.Sum(d) / numElements(d)
}

func HuberPrime(actual, estimated mat.Matrix) *mat.Dense {
	d := residual(actual, estimated)
	n := numElements(d)
	d.Apply(func(_, _ int, v float64) float64 {
		if math.Abs(v) <= huberDelta {
			return v / n
		}
		return math.Copysign(huberDelta, v) / n
	}, d)
	return d
}

type costPair struct {
	fn    CostFunc
	prime CostPrimeFunc
}

var costs = map[string]costPair{
	"mse":          {MeanSquaredError, MeanSquaredErrorPrime},
	"crossentropy": {CrossEntropy, CrossEntropyPrime},
	"abs":          {AbsoluteError, AbsoluteErrorPrime},
	"huber":        {Huber, HuberPrime},
}

// CostByName 根据名称返回代价函数及其导数
func CostByName(name string) (CostFunc, CostPrimeFunc, error) {
	p, ok := costs[name]
	if !ok {
		return nil, nil, fmt.Errorf("代价函数 %q: %w", name, ErrNotFound)
	}
	return p.fn, p.prime, nil
}

func CostNames() []string {
	names := make([]string, 0, len(costs))
	for name := range costs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
