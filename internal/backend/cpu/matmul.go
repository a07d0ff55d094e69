package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// MatMul multiplies [M, K] by [K, N]. Rows fan out across workers; the
// k-inner loop keeps accesses to b sequential per output row.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("matmul: unsupported dtypes %s, %s (only float32)", a.DType(), b.DType()))
	}
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: need rank-2 operands, got %v and %v", aShape, bShape))
	}
	m, k := aShape[0], aShape[1]
	k2, n := bShape[0], bShape[1]
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v x %v", aShape, bShape))
	}

	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: %v", err))
	}
	av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()

	parallel.For(m, 16, func(start, end int) {
		matmulRows(av, bv, rv, start, end, k, n)
	})
	return result
}

func matmulRows(a, b, out []float32, rowStart, rowEnd, k, n int) {
	for i := rowStart; i < rowEnd; i++ {
		outRow := out[i*n : (i+1)*n]
		for kk := 0; kk < k; kk++ {
			aik := a[i*k+kk]
			if aik == 0 {
				continue
			}
			bRow := b[kk*n : (kk+1)*n]
			for j := range outRow {
				outRow[j] += aik * bRow[j]
			}
		}
	}
}
