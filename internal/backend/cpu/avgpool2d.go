package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// AvgPool2D averages non-overlapping (or strided) square windows over
// an NCHW batch. Windows never cross the input edge: output extents
// are floor((in - kernel)/stride) + 1.
func (cpu *CPUBackend) AvgPool2D(x *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	shape := x.Shape()
	validatePoolArgs(x, kernelSize, stride)

	n, c, inH, inW := shape[0], shape[1], shape[2], shape[3]
	outH := (inH-kernelSize)/stride + 1
	outW := (inW-kernelSize)/stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("avgpool2d: window %d does not fit input %v with stride %d",
			kernelSize, shape, stride))
	}

	result, err := tensor.NewRaw(tensor.Shape{n, c, outH, outW}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("avgpool2d: %v", err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()
	inv := 1.0 / float32(kernelSize*kernelSize)

	parallel.For(n*c, 1, func(start, end int) {
		for nc := start; nc < end; nc++ {
			inBase := nc * inH * inW
			outBase := nc * outH * outW
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					var acc float32
					for ki := 0; ki < kernelSize; ki++ {
						row := inBase + (oh*stride+ki)*inW + ow*stride
						for kj := 0; kj < kernelSize; kj++ {
							acc += src[row+kj]
						}
					}
					dst[outBase+oh*outW+ow] = acc * inv
				}
			}
		}
	})
	return result
}

// AvgPool2DBackward spreads each output gradient evenly over the
// window that produced it.
func (cpu *CPUBackend) AvgPool2DBackward(gradOut *tensor.RawTensor, inputShape tensor.Shape, kernelSize, stride int) *tensor.RawTensor {
	gShape := gradOut.Shape()
	if len(gShape) != 4 || len(inputShape) != 4 {
		panic(fmt.Sprintf("avgpool2d backward: need rank-4 gradOut and inputShape, got %v and %v",
			gShape, inputShape))
	}

	n, c, inH, inW := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	outH, outW := gShape[2], gShape[3]

	result, err := tensor.NewRaw(inputShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("avgpool2d backward: %v", err))
	}
	g, dst := gradOut.AsFloat32(), result.AsFloat32()
	inv := 1.0 / float32(kernelSize*kernelSize)

	parallel.For(n*c, 1, func(start, end int) {
		for nc := start; nc < end; nc++ {
			inBase := nc * inH * inW
			outBase := nc * outH * outW
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					share := g[outBase+oh*outW+ow] * inv
					for ki := 0; ki < kernelSize; ki++ {
						row := inBase + (oh*stride+ki)*inW + ow*stride
						for kj := 0; kj < kernelSize; kj++ {
							dst[row+kj] += share
						}
					}
				}
			}
		}
	})
	return result
}

func validatePoolArgs(x *tensor.RawTensor, kernelSize, stride int) {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("avgpool2d: unsupported dtype %s (only float32)", x.DType()))
	}
	if len(x.Shape()) != 4 {
		panic(fmt.Sprintf("avgpool2d: input must be [N, C, H, W], got %v", x.Shape()))
	}
	if kernelSize < 1 {
		panic(fmt.Sprintf("avgpool2d: kernel size must be >= 1, got %d", kernelSize))
	}
	if stride < 1 {
		panic(fmt.Sprintf("avgpool2d: stride must be >= 1, got %d", stride))
	}
}
