package network

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestDNN(t *testing.T, shape ...int) *DNN {
	t.Helper()
	nn, err := NewDNN(shape, rand.NewPCG(1, 2))
	require.NoError(t, err)
	return nn
}

// 构造 [2,2,1] 的固定参数网络
func fixedDNN(t *testing.T) *DNN {
	t.Helper()
	nn := newTestDNN(t, 2, 2, 1)
	require.NoError(t, nn.SetLayerWeights(1, mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	require.NoError(t, nn.SetLayerBiases(1, mat.NewVecDense(2, []float64{0.5, -1})))
	require.NoError(t, nn.SetLayerWeights(2, mat.NewDense(1, 2, []float64{1, -1})))
	require.NoError(t, nn.SetLayerBiases(2, mat.NewVecDense(1, []float64{2})))
	return nn
}

func TestNewDNNShapes(t *testing.T) {
	nn := newTestDNN(t, 3, 3, 2, 2)

	require.Len(t, nn.Layers, 4)
	require.Len(t, nn.Weights, 4)
	require.Len(t, nn.Biases, 4)
	assert.Nil(t, nn.Weights[0])
	assert.Nil(t, nn.Biases[0])

	for l, size := range nn.Shape {
		r, c := nn.Layers[l].Dims()
		assert.Equal(t, 1, r)
		assert.Equal(t, size, c)
		assert.Zero(t, mat.Sum(nn.Layers[l]))
	}
	for l := 1; l < len(nn.Shape); l++ {
		r, c := nn.Weights[l].Dims()
		assert.Equal(t, nn.Shape[l], r)
		assert.Equal(t, nn.Shape[l-1], c)
		assert.Equal(t, nn.Shape[l], nn.Biases[l].Len())
	}
}

func TestNewDNNUniformRange(t *testing.T) {
	nn := newTestDNN(t, 20, 30, 10)
	for l := 1; l < len(nn.Shape); l++ {
		for _, v := range nn.Weights[l].RawMatrix().Data {
			assert.True(t, v >= 0 && v < 1, "权重 %v 越界", v)
		}
		for _, v := range nn.Biases[l].RawVector().Data {
			assert.True(t, v >= 0 && v < 1, "偏置 %v 越界", v)
		}
	}
}

func TestNewDNNSeeded(t *testing.T) {
	a := newTestDNN(t, 4, 3, 2)
	b := newTestDNN(t, 4, 3, 2)
	assert.True(t, mat.Equal(a.Weights[1], b.Weights[1]))
	assert.True(t, mat.Equal(a.Biases[2], b.Biases[2]))

	c, err := NewDNN([]int{4, 3, 2}, rand.NewPCG(7, 7))
	require.NoError(t, err)
	assert.False(t, mat.Equal(a.Weights[1], c.Weights[1]))
}

func TestNewDNNRejectsBadSizes(t *testing.T) {
	_, err := NewDNN([]int{3, 0, 2}, nil)
	assert.ErrorIs(t, err, ErrLayerSize)

	_, err = NewDNN([]int{-1}, nil)
	assert.ErrorIs(t, err, ErrLayerSize)
}

func TestEmptyNetwork(t *testing.T) {
	nn, err := NewDNN(nil, nil)
	require.NoError(t, err)
	nn.SetActivationFunction(Identity, IdentityDerivative)

	_, err = nn.Propagate(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, ErrEmptyNetwork)
	assert.Nil(t, nn.Output())
}

func TestSetLayerWeights(t *testing.T) {
	nn := newTestDNN(t, 3, 2)

	w := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, nn.SetLayerWeights(1, w))
	assert.True(t, mat.Equal(w, nn.Weights[1]))

	// 设置时拷贝，外部修改不影响网络
	w.Set(0, 0, 100)
	assert.Equal(t, 1.0, nn.Weights[1].At(0, 0))

	err := nn.SetLayerWeights(1, mat.NewDense(3, 2, nil))
	assert.ErrorIs(t, err, ErrWeightSize)
	err = nn.SetLayerWeights(1, mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, ErrWeightSize)
	err = nn.SetLayerWeights(1, nil)
	assert.ErrorIs(t, err, ErrWeightSize)

	assert.ErrorIs(t, nn.SetLayerWeights(0, w), ErrLayerIndex)
	assert.ErrorIs(t, nn.SetLayerWeights(2, w), ErrLayerIndex)
	assert.ErrorIs(t, nn.SetLayerWeights(-1, w), ErrLayerIndex)
}

func TestSetLayerBiases(t *testing.T) {
	nn := newTestDNN(t, 3, 2)

	b := mat.NewVecDense(2, []float64{0.1, 0.2})
	require.NoError(t, nn.SetLayerBiases(1, b))
	b.SetVec(0, 9)
	assert.Equal(t, 0.1, nn.Biases[1].AtVec(0))

	assert.ErrorIs(t, nn.SetLayerBiases(1, mat.NewVecDense(3, nil)), ErrBiasSize)
	assert.ErrorIs(t, nn.SetLayerBiases(1, nil), ErrBiasSize)
	assert.ErrorIs(t, nn.SetLayerBiases(0, b), ErrLayerIndex)
}

func TestLayerAccessorsReturnCopies(t *testing.T) {
	nn := newTestDNN(t, 2, 2)
	w, err := nn.LayerWeights(1)
	require.NoError(t, err)
	w.Set(0, 0, -5)
	assert.NotEqual(t, -5.0, nn.Weights[1].At(0, 0))

	b, err := nn.LayerBiases(1)
	require.NoError(t, err)
	b.SetVec(0, -5)
	assert.NotEqual(t, -5.0, nn.Biases[1].AtVec(0))

	_, err = nn.LayerWeights(0)
	assert.ErrorIs(t, err, ErrLayerIndex)
}

func TestPropagateIdentity(t *testing.T) {
	nn := fixedDNN(t)
	nn.SetActivationFunction(Identity, IdentityDerivative)

	out, err := nn.Propagate(mat.NewDense(2, 2, []float64{1, 1, 0, -1}))
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(out, mat.NewDense(2, 1, []float64{-0.5, 5.5}), 1e-12))
	assert.True(t, mat.EqualApprox(nn.Layers[1], mat.NewDense(2, 2, []float64{3.5, 6, -1.5, -5}), 1e-12))
	assert.True(t, mat.Equal(nn.Layers[0], mat.NewDense(2, 2, []float64{1, 1, 0, -1})))
}

func TestPropagateReLU(t *testing.T) {
	nn := fixedDNN(t)
	require.NoError(t, nn.SetActivationByName("relu"))

	out, err := nn.Propagate(mat.NewDense(2, 2, []float64{1, 1, 0, -1}))
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(out, mat.NewDense(2, 1, []float64{0, 2}), 1e-12))
}

func TestPropagateVec(t *testing.T) {
	nn := fixedDNN(t)
	nn.SetActivationFunction(Identity, IdentityDerivative)

	out, err := nn.PropagateVec([]float64{1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.5}, out, 1e-12)

	// 修改返回值不影响网络保存的输出层
	out[0] = 100
	assert.InDelta(t, -0.5, nn.Output().At(0, 0), 1e-12)

	_, err = nn.PropagateVec(nil)
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestPropagateLayerShapes(t *testing.T) {
	nn := newTestDNN(t, 5, 4, 3, 2)
	require.NoError(t, nn.SetActivationByName("sigmoid"))

	_, err := nn.Propagate(mat.NewDense(7, 5, nil))
	require.NoError(t, err)
	for l, size := range nn.Shape {
		r, c := nn.Layers[l].Dims()
		assert.Equal(t, 7, r)
		assert.Equal(t, size, c)
	}
}

func TestPropagateSingleLayer(t *testing.T) {
	nn := newTestDNN(t, 3)
	nn.SetActivationFunction(Sigmoid, SigmoidDerivative)
	in := mat.NewDense(1, 3, []float64{1, 2, 3})

	out, err := nn.Propagate(in)
	require.NoError(t, err)
	assert.True(t, mat.Equal(in, out))
}

func TestPropagateErrors(t *testing.T) {
	nn := newTestDNN(t, 3, 2)

	_, err := nn.Propagate(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrNoActivation)

	nn.SetActivationFunction(Sigmoid, SigmoidDerivative)
	_, err = nn.Propagate(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, ErrInputSize)

	nn.SetActivationFunction(func(*mat.Dense) *mat.Dense { return mat.NewDense(1, 1, nil) }, nil)
	_, err = nn.Propagate(mat.NewDense(2, 3, nil))
	assert.Error(t, err)
}

func TestPropagateSoftmaxRows(t *testing.T) {
	nn := newTestDNN(t, 4, 6, 3)
	require.NoError(t, nn.SetActivationByName("softmax"))

	out, err := nn.Propagate(mat.NewDense(3, 4, []float64{
		1, 2, 3, 4,
		-1, 0, 1, 0,
		100, 200, 300, 400,
	}))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		sum := 0.0
		for _, v := range out.RawRowView(i) {
			assert.False(t, math.IsNaN(v))
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestEvaluateCost(t *testing.T) {
	nn := fixedDNN(t)
	nn.SetActivationFunction(Identity, IdentityDerivative)

	_, err := nn.EvaluateCost(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, ErrNoCost)

	require.NoError(t, nn.SetCostByName("mse"))
	_, err = nn.Propagate(mat.NewDense(2, 2, []float64{1, 1, 0, -1}))
	require.NoError(t, err)

	c, err := nn.EvaluateCost(mat.NewDense(2, 1, []float64{0.5, 5.5}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c, 1e-12)

	_, err = nn.EvaluateCost(mat.NewDense(1, 1, nil))
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestSetByNameUnknown(t *testing.T) {
	nn := newTestDNN(t, 2, 2)
	assert.ErrorIs(t, nn.SetActivationByName("gelu"), ErrNotFound)
	assert.ErrorIs(t, nn.SetCostByName("hinge"), ErrNotFound)

	require.NoError(t, nn.SetActivationByName("tanh"))
	assert.Equal(t, "tanh", nn.ActivationName)
	nn.SetActivationFunction(ReLU, ReLUDerivative)
	assert.Empty(t, nn.ActivationName)

	fn, prime := nn.Activation()
	assert.NotNil(t, fn)
	assert.NotNil(t, prime)
}
