package network

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/*
该文件包含网络的前向传播以及基于输出层的代价计算
*/

// Propagate 将输入矩阵前向传播通过整个网络，每一行对应一个样本
// 第i层: Layers[i] = activation(Layers[i-1] * Weights[i]^T + Biases[i])
func (nn *DNN) Propagate(input mat.Matrix) (*mat.Dense, error) {
	if len(nn.Shape) == 0 {
		return nil, ErrEmptyNetwork
	}
	if nn.activation == nil {
		return nil, ErrNoActivation
	}
	rows, cols := input.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("%w: 输入没有样本", ErrInputSize)
	}
	if cols != nn.Shape[0] {
		return nil, fmt.Errorf("%w: 需要 %d 列，得到 %d 列", ErrInputSize, nn.Shape[0], cols)
	}

	layers := make([]*mat.Dense, len(nn.Layers))
	layers[0] = mat.DenseCopyOf(input)
	for i := 1; i < len(layers); i++ {
		z := mat.NewDense(rows, nn.Shape[i], nil)
		z.Mul(layers[i-1], nn.Weights[i].T())
		addBias(z, nn.Biases[i])

		a := nn.activation(z)
		if a == nil {
			return nil, fmt.Errorf("激活函数在第 %d 层返回nil", i)
		}
		if r, c := a.Dims(); r != rows || c != nn.Shape[i] {
			return nil, fmt.Errorf("激活函数改变了第 %d 层的尺寸: %dx%d", i, r, c)
		}
		layers[i] = a
	}
	nn.Layers = layers
	return nn.Output(), nil
}

// PropagateVec 传播单个样本，返回输出层的副本
func (nn *DNN) PropagateVec(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: 输入为空", ErrInputSize)
	}
	out, err := nn.Propagate(mat.NewDense(1, len(input), input))
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, out), nil
}

// addBias 将偏置加到每一行上
func addBias(z *mat.Dense, b *mat.VecDense) {
	rows, _ := z.Dims()
	for i := 0; i < rows; i++ {
		row := z.RawRowView(i)
		for j := range row {
			row[j] += b.AtVec(j)
		}
	}
}

// Output 返回输出层的节点值
func (nn *DNN) Output() *mat.Dense {
	if len(nn.Layers) == 0 {
		return nil
	}
	return nn.Layers[len(nn.Layers)-1]
}

// EvaluateCost 计算输出层相对于actual的代价
func (nn *DNN) EvaluateCost(actual mat.Matrix) (float64, error) {
	if nn.cost == nil {
		return 0, ErrNoCost
	}
	out := nn.Output()
	if out == nil {
		return 0, ErrEmptyNetwork
	}
	ar, ac := actual.Dims()
	or, oc := out.Dims()
	if ar != or || ac != oc {
		return 0, fmt.Errorf("%w: 输出为 %dx%d，actual为 %dx%d", ErrInputSize, or, oc, ar, ac)
	}
	return nn.cost(actual, out), nil
}
