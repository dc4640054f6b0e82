package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"DNNDev/cmd/DNNServer/utils"
	"DNNDev/pkg/network"
	"DNNDev/pkg/participant"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNetworkNotFound = errors.New("网络不存在")
	ErrInvalidID       = errors.New("网络ID格式不正确")
	ErrNoEncryption    = errors.New("服务未启用加密传播")
	ErrNetworkTooLarge = errors.New("网络规模超出服务限制")
)

// 单个网络的规模上限，防止一次请求分配过多内存
const (
	MaxLayers     = 256
	MaxLayerSize  = 4096
	MaxParameters = 1 << 24
)

// checkShape 在分配权重之前检查网络规模
func checkShape(shape []int) error {
	if len(shape) > MaxLayers {
		return fmt.Errorf("%w: %d 层 > %d", ErrNetworkTooLarge, len(shape), MaxLayers)
	}
	total := 0
	for i, size := range shape {
		if size > MaxLayerSize {
			return fmt.Errorf("%w: 第 %d 层 %d 个节点 > %d", ErrNetworkTooLarge, i, size, MaxLayerSize)
		}
		if i > 0 && size > 0 && shape[i-1] > 0 {
			total += size*shape[i-1] + size
		}
	}
	if total > MaxParameters {
		return fmt.Errorf("%w: %d 个参数 > %d", ErrNetworkTooLarge, total, MaxParameters)
	}
	return nil
}

// entry 单个网络，前向传播会写入Layers，因此每个网络单独加锁
type entry struct {
	mu        sync.Mutex
	seq       uint64
	id        uuid.UUID
	createdAt time.Time
	nn        *network.DNN
}

func (e *entry) info() utils.NetworkInfo {
	return utils.NetworkInfo{
		ID:         e.id.String(),
		Shape:      append([]int(nil), e.nn.Shape...),
		Activation: e.nn.ActivationName,
		Cost:       e.nn.CostName,
		CreatedAt:  e.createdAt,
	}
}

// Registry 网络注册表
type Registry struct {
	networks map[uuid.UUID]*entry
	nextSeq  uint64
	mu       sync.RWMutex

	// 可选的加密传播参与方
	party *participant.NNParty
}

// NewRegistry 创建注册表，party为nil时不支持加密传播
func NewRegistry(party *participant.NNParty) *Registry {
	return &Registry{
		networks: make(map[uuid.UUID]*entry),
		party:    party,
	}
}

func (r *Registry) lookup(id string) (*entry, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.networks[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, id)
	}
	return e, nil
}

// Create 创建新网络并注册
func (r *Registry) Create(req utils.CreateNetworkRequest) (utils.NetworkInfo, error) {
	var src rand.Source
	if req.Seed != nil {
		src = rand.NewPCG(*req.Seed, *req.Seed)
	}
	if err := checkShape(req.Shape); err != nil {
		return utils.NetworkInfo{}, err
	}
	nn, err := network.NewDNN(req.Shape, src)
	if err != nil {
		return utils.NetworkInfo{}, err
	}
	if req.Activation != "" {
		if err := nn.SetActivationByName(req.Activation); err != nil {
			return utils.NetworkInfo{}, err
		}
	}
	if req.Cost != "" {
		if err := nn.SetCostByName(req.Cost); err != nil {
			return utils.NetworkInfo{}, err
		}
	}

	e := &entry{id: uuid.New(), createdAt: time.Now(), nn: nn}
	r.mu.Lock()
	e.seq = r.nextSeq
	r.nextSeq++
	r.networks[e.id] = e
	r.mu.Unlock()

	fmt.Printf("创建网络 %s，结构 %v\n", e.id, nn.Shape)
	return e.info(), nil
}

// List 按创建时间返回所有网络
func (r *Registry) List() []utils.NetworkInfo {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.networks))
	for _, e := range r.networks {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	infos := make([]utils.NetworkInfo, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		infos[i] = e.info()
		e.mu.Unlock()
	}
	return infos
}

func (r *Registry) Get(id string) (utils.NetworkInfo, error) {
	e, err := r.lookup(id)
	if err != nil {
		return utils.NetworkInfo{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info(), nil
}

func (r *Registry) Delete(id string) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.networks, e.id)
	r.mu.Unlock()
	fmt.Printf("删除网络 %s\n", id)
	return nil
}

// Count 返回已注册网络的数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.networks)
}

// Encrypted 是否支持加密传播
func (r *Registry) Encrypted() bool {
	return r.party != nil
}

// withNetwork 在持有网络锁的情况下执行fn
func (r *Registry) withNetwork(id string, fn func(nn *network.DNN) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.nn)
}

// LayerParams 返回第layer层的权重和偏置
func (r *Registry) LayerParams(id string, layer int) (utils.LayerParams, error) {
	var params utils.LayerParams
	err := r.withNetwork(id, func(nn *network.DNN) error {
		w, err := nn.LayerWeights(layer)
		if err != nil {
			return err
		}
		b, err := nn.LayerBiases(layer)
		if err != nil {
			return err
		}
		params = utils.LayerParams{
			Layer:   layer,
			Weights: utils.FromDense(w),
			Biases:  append([]float64(nil), b.RawVector().Data...),
		}
		return nil
	})
	return params, err
}

func (r *Registry) SetWeights(id string, layer int, weights [][]float64) error {
	w, err := utils.ToDense(weights)
	if err != nil {
		return err
	}
	return r.withNetwork(id, func(nn *network.DNN) error {
		return nn.SetLayerWeights(layer, w)
	})
}

func (r *Registry) SetBiases(id string, layer int, biases []float64) error {
	if len(biases) == 0 {
		return fmt.Errorf("%w: 偏置为空", network.ErrBiasSize)
	}
	b := mat.NewVecDense(len(biases), append([]float64(nil), biases...))
	return r.withNetwork(id, func(nn *network.DNN) error {
		return nn.SetLayerBiases(layer, b)
	})
}

func (r *Registry) SetActivation(id, name string) error {
	return r.withNetwork(id, func(nn *network.DNN) error {
		return nn.SetActivationByName(name)
	})
}

func (r *Registry) SetCost(id, name string) error {
	return r.withNetwork(id, func(nn *network.DNN) error {
		return nn.SetCostByName(name)
	})
}

// Propagate 前向传播，withLayers为true时同时返回所有层的节点值
func (r *Registry) Propagate(id string, input [][]float64, withLayers bool) (utils.PropagateResponse, error) {
	var resp utils.PropagateResponse
	in, err := utils.ToDense(input)
	if err != nil {
		return resp, err
	}
	err = r.withNetwork(id, func(nn *network.DNN) error {
		out, err := nn.Propagate(in)
		if err != nil {
			return err
		}
		resp.Output = utils.FromDense(out)
		if withLayers {
			for _, l := range nn.Layers {
				resp.Layers = append(resp.Layers, utils.FromDense(l))
			}
		}
		return nil
	})
	return resp, err
}

// EvaluateCost 计算最近一次传播的输出层代价
func (r *Registry) EvaluateCost(id string, actual [][]float64) (float64, error) {
	a, err := utils.ToDense(actual)
	if err != nil {
		return 0, err
	}
	var cost float64
	err = r.withNetwork(id, func(nn *network.DNN) error {
		c, err := nn.EvaluateCost(a)
		cost = c
		return err
	})
	return cost, err
}

// PropagateEncrypted 逐个样本执行加密前向传播
func (r *Registry) PropagateEncrypted(ctx context.Context, id string, input [][]float64) (utils.PropagateResponse, error) {
	var resp utils.PropagateResponse
	if r.party == nil {
		return resp, ErrNoEncryption
	}
	if _, err := utils.ToDense(input); err != nil {
		return resp, err
	}
	err := r.withNetwork(id, func(nn *network.DNN) error {
		for _, row := range input {
			out, err := r.party.Propagate(ctx, nn, row)
			if err != nil {
				return err
			}
			resp.Output = append(resp.Output, out)
		}
		return nil
	})
	return resp, err
}

// Status 返回服务状态
func (r *Registry) Status() utils.StatusResponse {
	return utils.StatusResponse{
		Networks:    r.Count(),
		Activations: network.ActivationNames(),
		Costs:       network.CostNames(),
		Encrypted:   r.Encrypted(),
	}
}
