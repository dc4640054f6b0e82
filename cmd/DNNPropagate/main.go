package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"DNNDev/pkg/dataProcess"
	"DNNDev/pkg/network"
	"DNNDev/pkg/participant"
	"DNNDev/pkg/setup"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// parseShape 解析形如 "784,64,10" 的网络结构
func parseShape(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("无法解析层大小 %q: %w", p, err)
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("网络结构为空")
	}
	return shape, nil
}

// randomInputs 生成 n*cols 的[0,1)均匀分布输入
func randomInputs(n, cols int, src rand.Source) *mat.Dense {
	dist := distuv.Uniform{Min: 0, Max: 1, Src: src}
	data := make([]float64, n*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(n, cols, data)
}

func main() {
	shapeFlag := flag.String("shape", "784,64,64,10", "每一层的节点数，逗号分隔")
	activation := flag.String("activation", "sigmoid", "激活函数: "+strings.Join(network.ActivationNames(), ", "))
	cost := flag.String("cost", "crossentropy", "代价函数: "+strings.Join(network.CostNames(), ", "))
	seed := flag.Uint64("seed", 0, "随机种子，0表示使用当前时间")
	imagesFile := flag.String("images", "", "IDX图像文件(gzip)，为空时使用随机输入")
	labelsFile := flag.String("labels", "", "IDX标签文件(gzip)，用于计算代价")
	n := flag.Int("n", 10, "传播的样本数")
	encrypted := flag.Bool("encrypted", false, "同时执行CKKS加密前向传播并比较结果")
	flag.Parse()

	shape, err := parseShape(*shapeFlag)
	if err != nil {
		log.Fatalf("网络结构不正确: %v", err)
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(*seed, *seed)

	nn, err := network.NewDNN(shape, src)
	if err != nil {
		log.Fatalf("创建网络失败: %v", err)
	}
	if err := nn.SetActivationByName(*activation); err != nil {
		log.Fatalf("设置激活函数失败: %v", err)
	}
	if err := nn.SetCostByName(*cost); err != nil {
		log.Fatalf("设置代价函数失败: %v", err)
	}
	fmt.Print(nn)

	var input, actual *mat.Dense
	if *imagesFile != "" {
		ds, err := dataProcess.LoadDataset(*imagesFile, *labelsFile)
		if err != nil {
			log.Fatalf("加载数据集失败: %v", err)
		}
		fmt.Printf("数据集包含 %d 个样本\n", len(ds.Images))
		if input, err = ds.ToMatrix(*n); err != nil {
			log.Fatalf("构造输入矩阵失败: %v", err)
		}
		if ds.Labels != nil {
			if actual, err = ds.OneHot(*n, shape[len(shape)-1]); err != nil {
				log.Fatalf("构造标签矩阵失败: %v", err)
			}
		}
	} else {
		if *n <= 0 {
			*n = 1
		}
		input = randomInputs(*n, shape[0], src)
	}

	start := time.Now()
	output, err := nn.Propagate(input)
	if err != nil {
		log.Fatalf("前向传播失败: %v", err)
	}
	fmt.Printf("前向传播完成，用时 %v\n", time.Since(start))

	rows, _ := output.Dims()
	for i := 0; i < rows; i++ {
		fmt.Printf("样本 %d 输出: %.4f\n", i+1, output.RawRowView(i))
	}
	if actual != nil {
		c, err := nn.EvaluateCost(actual)
		if err != nil {
			log.Fatalf("计算代价失败: %v", err)
		}
		fmt.Printf("代价(%s): %.6f\n", *cost, c)
	}

	if !*encrypted {
		return
	}
	params, err := setup.InitParameters()
	if err != nil {
		log.Fatalf("初始化CKKS参数失败: %v", err)
	}
	party := participant.NewNNParty(params)
	for i := 0; i < rows; i++ {
		start := time.Now()
		out, err := party.Propagate(context.Background(), nn, mat.Row(nil, i, input))
		if err != nil {
			log.Fatalf("加密前向传播失败: %v", err)
		}
		maxErr := 0.0
		for j, v := range out {
			maxErr = math.Max(maxErr, math.Abs(v-output.At(i, j)))
		}
		fmt.Printf("样本 %d 加密输出: %.4f，最大误差 %.2e，用时 %v\n", i+1, out, maxErr, time.Since(start))
	}
}
