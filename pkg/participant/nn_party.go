package participant

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"gonum.org/v1/gonum/mat"
	"golang.org/x/sync/errgroup"

	"DNNDev/pkg/network"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

/*
该文件实现基于CKKS的加密前向传播
每一层的点积 w_j · a 在密文上计算，持有私钥的一方解密后加上偏置并应用激活函数，
再重新加密作为下一层的输入
*/

var ErrSlots = errors.New("层节点数超过CKKS槽数")

// NNParty 持有CKKS密钥并负责加密前向传播
type NNParty struct {
	Params    ckks.Parameters
	Encoder   *ckks.Encoder   // CKKS编码器
	Encryptor *rlwe.Encryptor // CKKS加密器
	Decryptor *rlwe.Decryptor // CKKS解密器
	Evaluator *ckks.Evaluator // CKKS评估器

	slots   int
	workers int
}

// NewNNParty 生成密钥对以及内积求和所需的伽罗瓦密钥
func NewNNParty(params ckks.Parameters) *NNParty {
	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()

	slots := params.MaxSlots()
	galEls := params.GaloisElementsForInnerSum(1, slots)
	gks := kgen.GenGaloisKeysNew(galEls, sk)
	evk := rlwe.NewMemEvaluationKeySet(nil, gks...)

	fmt.Printf("加密组件初始化完成: LogN=%d, 槽数=%d, 伽罗瓦密钥 %d 个\n",
		params.LogN(), slots, len(gks))

	return &NNParty{
		Params:    params,
		Encoder:   ckks.NewEncoder(params),
		Encryptor: ckks.NewEncryptor(params, pk),
		Decryptor: ckks.NewDecryptor(params, sk),
		Evaluator: ckks.NewEvaluator(params, evk),
		slots:     slots,
		workers:   runtime.NumCPU(),
	}
}

// Slots 返回单个密文可容纳的节点数
func (nnp *NNParty) Slots() int {
	return nnp.slots
}

// codec 单次调用独占的编码、加密、解密组件
// lattigo的Encoder/Encryptor/Decryptor内部带有缓冲区，不能被多个goroutine共享
type codec struct {
	encoder   *ckks.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
}

func (nnp *NNParty) newCodec() *codec {
	return &codec{
		encoder:   nnp.Encoder.ShallowCopy(),
		encryptor: nnp.Encryptor.ShallowCopy(),
		decryptor: nnp.Decryptor.ShallowCopy(),
	}
}

// EncryptRow 将一行节点值编码并加密
func (nnp *NNParty) EncryptRow(values []float64) (*rlwe.Ciphertext, error) {
	return nnp.encryptRow(nnp.newCodec(), values)
}

// DecryptRow 解密并返回前n个槽的实部
func (nnp *NNParty) DecryptRow(ct *rlwe.Ciphertext, n int) ([]float64, error) {
	return nnp.decryptRow(nnp.newCodec(), ct, n)
}

func (nnp *NNParty) encryptRow(c *codec, values []float64) (*rlwe.Ciphertext, error) {
	if len(values) > nnp.slots {
		return nil, fmt.Errorf("%w: %d > %d", ErrSlots, len(values), nnp.slots)
	}
	pt := ckks.NewPlaintext(nnp.Params, nnp.Params.MaxLevel())
	if err := c.encoder.Encode(values, pt); err != nil {
		return nil, fmt.Errorf("编码失败: %w", err)
	}
	ct, err := c.encryptor.EncryptNew(pt)
	if err != nil {
		return nil, fmt.Errorf("加密失败: %w", err)
	}
	return ct, nil
}

func (nnp *NNParty) decryptRow(c *codec, ct *rlwe.Ciphertext, n int) ([]float64, error) {
	decoded := make([]float64, nnp.slots)
	if err := c.encoder.Decode(c.decryptor.DecryptNew(ct), decoded); err != nil {
		return nil, fmt.Errorf("解码失败: %w", err)
	}
	return decoded[:n], nil
}

// dot 在密文上计算 w · a，结果位于0号槽
func (nnp *NNParty) dot(eval *ckks.Evaluator, ecd *ckks.Encoder, ct *rlwe.Ciphertext, w []float64) (*rlwe.Ciphertext, error) {
	pt := ckks.NewPlaintext(nnp.Params, ct.Level())
	if err := ecd.Encode(w, pt); err != nil {
		return nil, err
	}
	ctMul, err := eval.MulNew(ct, pt)
	if err != nil {
		return nil, err
	}
	ctRescaled := ckks.NewCiphertext(nnp.Params, ctMul.Degree(), ctMul.Level())
	if err := eval.Rescale(ctMul, ctRescaled); err != nil {
		return nil, err
	}
	ctSum := ckks.NewCiphertext(nnp.Params, ctRescaled.Degree(), ctRescaled.Level())
	if err := eval.InnerSum(ctRescaled, 1, nnp.slots, ctSum); err != nil {
		return nil, err
	}
	return ctSum, nil
}

// EncryptedLayer 在密文输入上计算第layer层所有节点的点积，返回每个节点一个密文
func (nnp *NNParty) EncryptedLayer(ctx context.Context, nn *network.DNN, layer int, ct *rlwe.Ciphertext) ([]*rlwe.Ciphertext, error) {
	weights, err := nn.LayerWeights(layer)
	if err != nil {
		return nil, err
	}
	outputSize, _ := weights.Dims()

	out := make([]*rlwe.Ciphertext, outputSize)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nnp.workers)
	for j := 0; j < outputSize; j++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := nnp.dot(nnp.Evaluator.ShallowCopy(), nnp.Encoder.ShallowCopy(), ct, mat.Row(nil, j, weights))
			if err != nil {
				return fmt.Errorf("第 %d 层第 %d 个节点: %w", layer, j, err)
			}
			out[j] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Propagate 对单个样本执行加密前向传播，返回输出层节点值
// 结果与 DNN.Propagate 在CKKS精度范围内一致
func (nnp *NNParty) Propagate(ctx context.Context, nn *network.DNN, input []float64) ([]float64, error) {
	if len(nn.Shape) == 0 {
		return nil, network.ErrEmptyNetwork
	}
	activation, _ := nn.Activation()
	if activation == nil {
		return nil, network.ErrNoActivation
	}
	if len(input) != nn.Shape[0] {
		return nil, fmt.Errorf("%w: 需要 %d，得到 %d", network.ErrInputSize, nn.Shape[0], len(input))
	}
	for _, size := range nn.Shape {
		if size > nnp.slots {
			return nil, fmt.Errorf("%w: %d > %d", ErrSlots, size, nnp.slots)
		}
	}

	cd := nnp.newCodec()
	a := append([]float64(nil), input...)
	for l := 1; l < len(nn.Shape); l++ {
		ct, err := nnp.encryptRow(cd, a)
		if err != nil {
			return nil, err
		}
		dots, err := nnp.EncryptedLayer(ctx, nn, l, ct)
		if err != nil {
			return nil, err
		}
		biases, err := nn.LayerBiases(l)
		if err != nil {
			return nil, err
		}

		z := mat.NewDense(1, nn.Shape[l], nil)
		for j, ctDot := range dots {
			v, err := nnp.decryptRow(cd, ctDot, 1)
			if err != nil {
				return nil, err
			}
			z.Set(0, j, v[0]+biases.AtVec(j))
		}
		next := activation(z)
		if next == nil {
			return nil, fmt.Errorf("激活函数在第 %d 层返回nil", l)
		}
		if r, c := next.Dims(); r != 1 || c != nn.Shape[l] {
			return nil, fmt.Errorf("激活函数改变了第 %d 层的尺寸: %dx%d", l, r, c)
		}
		a = mat.Row(nil, 0, next)
	}
	return a, nil
}
