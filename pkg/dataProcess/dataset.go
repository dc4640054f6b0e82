package dataProcess

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

/*
该文件实现IDX格式（gzip压缩）数据集的加载，以及转换为前向传播所需的矩阵
*/

const (
	imagesMagic = 2051
	labelsMagic = 2049
)

type Dataset struct {
	Images [][]byte
	Labels []byte
}

func openGzip(filename string) (*os.File, *gzip.Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("无法打开文件: %w", err)
	}
	reader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("无法解压缩文件: %w", err)
	}
	return file, reader, nil
}

// readHeader 读取IDX头信息，第一个字段为魔数
func readHeader(r io.Reader, magic int32, fields ...*int32) error {
	var magicNumber int32
	if err := binary.Read(r, binary.BigEndian, &magicNumber); err != nil {
		return fmt.Errorf("读取魔数失败: %w", err)
	}
	if magicNumber != magic {
		return fmt.Errorf("文件格式不正确（魔数 %d，期望 %d）", magicNumber, magic)
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return fmt.Errorf("读取头信息失败: %w", err)
		}
		if *f < 0 {
			return fmt.Errorf("头信息中的维度为负数: %d", *f)
		}
	}
	return nil
}

// LoadImages 从 IDX 文件加载图像数据，每张图像展平为一行
func LoadImages(filename string) ([][]byte, error) {
	file, reader, err := openGzip(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	defer reader.Close()

	var numImages, numRows, numCols int32
	if err := readHeader(reader, imagesMagic, &numImages, &numRows, &numCols); err != nil {
		return nil, err
	}

	images := make([][]byte, numImages)
	for i := range images {
		img := make([]byte, int(numRows)*int(numCols))
		if _, err := io.ReadFull(reader, img); err != nil {
			return nil, fmt.Errorf("读取第 %d 张图像失败: %w", i, err)
		}
		images[i] = img
	}
	return images, nil
}

// LoadLabels 从 IDX 文件加载标签数据
func LoadLabels(filename string) ([]byte, error) {
	file, reader, err := openGzip(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	defer reader.Close()

	var numItems int32
	if err := readHeader(reader, labelsMagic, &numItems); err != nil {
		return nil, err
	}

	labels := make([]byte, numItems)
	if _, err := io.ReadFull(reader, labels); err != nil {
		return nil, fmt.Errorf("读取标签数据失败: %w", err)
	}
	return labels, nil
}

// LoadDataset 加载图像和标签，labelsFile为空时只加载图像
func LoadDataset(imagesFile, labelsFile string) (*Dataset, error) {
	images, err := LoadImages(imagesFile)
	if err != nil {
		return nil, fmt.Errorf("加载图像数据失败: %w", err)
	}
	ds := &Dataset{Images: images}
	if labelsFile == "" {
		return ds, nil
	}
	labels, err := LoadLabels(labelsFile)
	if err != nil {
		return nil, fmt.Errorf("加载标签数据失败: %w", err)
	}
	if len(labels) != len(images) {
		return nil, fmt.Errorf("图像数量(%d)与标签数量(%d)不一致", len(images), len(labels))
	}
	ds.Labels = labels
	return ds, nil
}

// ToMatrix 取前n张图像组成输入矩阵，像素归一化到[0,1]，每一行对应一个样本
// n<=0 或超过图像数量时使用全部图像
func (ds *Dataset) ToMatrix(n int) (*mat.Dense, error) {
	n = ds.limit(n)
	if n == 0 {
		return nil, fmt.Errorf("数据集为空")
	}
	cols := len(ds.Images[0])
	m := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		if len(ds.Images[i]) != cols {
			return nil, fmt.Errorf("第 %d 张图像长度为 %d，期望 %d", i, len(ds.Images[i]), cols)
		}
		row := m.RawRowView(i)
		for j, px := range ds.Images[i] {
			row[j] = float64(px) / 255.0
		}
	}
	return m, nil
}

// OneHot 将前n个标签转换为one-hot矩阵，可作为代价函数的actual
func (ds *Dataset) OneHot(n, numClasses int) (*mat.Dense, error) {
	if len(ds.Labels) == 0 {
		return nil, fmt.Errorf("数据集没有标签")
	}
	n = ds.limit(n)
	if n > len(ds.Labels) {
		n = len(ds.Labels)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("类别数必须为正数: %d", numClasses)
	}
	m := mat.NewDense(n, numClasses, nil)
	for i := 0; i < n; i++ {
		label := int(ds.Labels[i])
		if label >= numClasses {
			return nil, fmt.Errorf("第 %d 个标签 %d 超出类别数 %d", i, label, numClasses)
		}
		m.Set(i, label, 1)
	}
	return m, nil
}

func (ds *Dataset) limit(n int) int {
	if n <= 0 || n > len(ds.Images) {
		return len(ds.Images)
	}
	return n
}
