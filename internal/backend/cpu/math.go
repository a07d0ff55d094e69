package cpu

import (
	"fmt"
	"math"

	"github.com/strand-ml/strand/internal/tensor"
)

// Exp computes element-wise exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Log computes element-wise ln(x). Non-positive inputs are programmer
// errors and panic with the offending value.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("log", x, func(v float32) float32 {
		if v <= 0 {
			panic(fmt.Sprintf("log: non-positive value %f", v))
		}
		return float32(math.Log(float64(v)))
	})
}

// Sqrt computes element-wise sqrt(x).
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("sqrt", x, func(v float32) float32 {
		if v < 0 {
			panic(fmt.Sprintf("sqrt: negative value %f", v))
		}
		return float32(math.Sqrt(float64(v)))
	})
}

// Rsqrt computes element-wise 1/sqrt(x). Normalization layers divide by
// a standard deviation; fusing the reciprocal keeps that a single op.
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("rsqrt", x, func(v float32) float32 {
		if v <= 0 {
			panic(fmt.Sprintf("rsqrt: non-positive value %f", v))
		}
		return float32(1.0 / math.Sqrt(float64(v)))
	})
}

// ReLU computes element-wise max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("relu", x, func(v float32) float32 {
		if v < 0 {
			return 0
		}
		return v
	})
}

func (cpu *CPUBackend) mapFloat32(name string, x *tensor.RawTensor, fn func(v float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32)", name, x.DType()))
	}
	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()
	for i, v := range src {
		dst[i] = fn(v)
	}
	return result
}

// Softmax computes softmax along dim with the max-subtraction trick for
// numerical stability. Negative dims count from the end.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("softmax: unsupported dtype %s (only float32)", x.DType()))
	}
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("softmax: dim out of range for shape %v", shape))
	}

	result, err := tensor.NewRaw(shape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()

	dimSize := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := x.NumElements() / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in

			maxVal := src[base]
			for d := 1; d < dimSize; d++ {
				if v := src[base+d*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum float64
			for d := 0; d < dimSize; d++ {
				e := math.Exp(float64(src[base+d*inner] - maxVal))
				dst[base+d*inner] = float32(e)
				sum += e
			}
			for d := 0; d < dimSize; d++ {
				dst[base+d*inner] = float32(float64(dst[base+d*inner]) / sum)
			}
		}
	}
	return result
}

// CrossEntropy computes mean softmax cross-entropy. logits must be
// [batch, classes] float32 and targets [batch] int32; the result is a
// single-element tensor.
func (cpu *CPUBackend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	if logits.DType() != tensor.Float32 || targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("crossEntropy: want float32 logits and int32 targets, got %s and %s",
			logits.DType(), targets.DType()))
	}
	lShape := logits.Shape()
	if len(lShape) != 2 {
		panic(fmt.Sprintf("crossEntropy: logits must be [batch, classes], got %v", lShape))
	}
	batch, classes := lShape[0], lShape[1]
	if targets.NumElements() != batch {
		panic(fmt.Sprintf("crossEntropy: %d targets for batch of %d", targets.NumElements(), batch))
	}

	src := logits.AsFloat32()
	tgt := targets.AsInt32()

	var total float64
	for b := 0; b < batch; b++ {
		row := src[b*classes : (b+1)*classes]
		cls := int(tgt[b])
		if cls < 0 || cls >= classes {
			panic(fmt.Sprintf("crossEntropy: target %d out of range [0, %d)", cls, classes))
		}

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxVal))
		}
		// -log softmax(target) = log(sum exp) - (logit - max)
		total += math.Log(sumExp) - float64(row[cls]-maxVal)
	}

	result, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("crossEntropy: %v", err))
	}
	result.AsFloat32()[0] = float32(total / float64(batch))
	return result
}
