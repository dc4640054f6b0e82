package setup

import (
	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"
)

// InitParameters 初始化CKKS参数
// 每层前向传播只需要一次明文-密文乘法，因此只保留一个可重缩放的模数
// Q0 比缩放因子多出20比特，用于容纳点积的整数部分
func InitParameters() (ckks.Parameters, error) {
	return ckks.NewParametersFromLiteral(
		ckks.ParametersLiteral{
			LogN:            13,
			LogQ:            []int{60, 40},
			LogP:            []int{61},
			LogDefaultScale: 40,
			Xs:              ring.Ternary{H: 192},
		})
}
