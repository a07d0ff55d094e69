package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/parallel"
	"github.com/strand-ml/strand/internal/tensor"
)

// Conv2D performs 2-D cross-correlation over an NCHW batch with a
// [outC, inC, kH, kW] kernel. Zero padding, square stride. Batch
// elements are independent, so the outer loop fans out across workers.
func (cpu *CPUBackend) Conv2D(x, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	xShape, kShape := x.Shape(), kernel.Shape()
	validateConvArgs(x, kernel, stride, padding)

	n, inC, inH, inW := xShape[0], xShape[1], xShape[2], xShape[3]
	outC, kH, kW := kShape[0], kShape[2], kShape[3]
	outH := (inH+2*padding-kH)/stride + 1
	outW := (inW+2*padding-kW)/stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: kernel %v does not fit input %v with stride %d padding %d",
			kShape, xShape, stride, padding))
	}

	result, err := tensor.NewRaw(tensor.Shape{n, outC, outH, outW}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: %v", err))
	}
	src, k, dst := x.AsFloat32(), kernel.AsFloat32(), result.AsFloat32()

	parallel.For(n, 1, func(start, end int) {
		for b := start; b < end; b++ {
			for oc := 0; oc < outC; oc++ {
				for oh := 0; oh < outH; oh++ {
					for ow := 0; ow < outW; ow++ {
						var acc float32
						for ic := 0; ic < inC; ic++ {
							for ki := 0; ki < kH; ki++ {
								ih := oh*stride + ki - padding
								if ih < 0 || ih >= inH {
									continue
								}
								for kj := 0; kj < kW; kj++ {
									iw := ow*stride + kj - padding
									if iw < 0 || iw >= inW {
										continue
									}
									acc += src[((b*inC+ic)*inH+ih)*inW+iw] *
										k[((oc*inC+ic)*kH+ki)*kW+kj]
								}
							}
						}
						dst[((b*outC+oc)*outH+oh)*outW+ow] = acc
					}
				}
			}
		}
	})
	return result
}

// Conv2DInputBackward scatters output gradients back to the input:
// the transpose of the forward correlation.
func (cpu *CPUBackend) Conv2DInputBackward(gradOut, kernel *tensor.RawTensor, inputShape tensor.Shape, stride, padding int) *tensor.RawTensor {
	gShape, kShape := gradOut.Shape(), kernel.Shape()
	if len(gShape) != 4 || len(kShape) != 4 || len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d input backward: need rank-4 gradOut/kernel/inputShape, got %v, %v, %v",
			gShape, kShape, inputShape))
	}

	n, inC, inH, inW := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	outC, kH, kW := kShape[0], kShape[2], kShape[3]
	outH, outW := gShape[2], gShape[3]

	result, err := tensor.NewRaw(inputShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d input backward: %v", err))
	}
	g, k, dst := gradOut.AsFloat32(), kernel.AsFloat32(), result.AsFloat32()

	parallel.For(n, 1, func(start, end int) {
		for b := start; b < end; b++ {
			for oc := 0; oc < outC; oc++ {
				for oh := 0; oh < outH; oh++ {
					for ow := 0; ow < outW; ow++ {
						gv := g[((b*outC+oc)*outH+oh)*outW+ow]
						if gv == 0 {
							continue
						}
						for ic := 0; ic < inC; ic++ {
							for ki := 0; ki < kH; ki++ {
								ih := oh*stride + ki - padding
								if ih < 0 || ih >= inH {
									continue
								}
								for kj := 0; kj < kW; kj++ {
									iw := ow*stride + kj - padding
									if iw < 0 || iw >= inW {
										continue
									}
									dst[((b*inC+ic)*inH+ih)*inW+iw] +=
										gv * k[((oc*inC+ic)*kH+ki)*kW+kj]
								}
							}
						}
					}
				}
			}
		}
	})
	return result
}

// Conv2DKernelBackward accumulates output gradients against the saved
// input to produce the kernel gradient. Accumulation crosses the batch
// axis, so this one stays single-threaded per output channel instead.
func (cpu *CPUBackend) Conv2DKernelBackward(gradOut, input *tensor.RawTensor, kernelShape tensor.Shape, stride, padding int) *tensor.RawTensor {
	gShape, xShape := gradOut.Shape(), input.Shape()
	if len(gShape) != 4 || len(xShape) != 4 || len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d kernel backward: need rank-4 gradOut/input/kernelShape, got %v, %v, %v",
			gShape, xShape, kernelShape))
	}

	n, inC, inH, inW := xShape[0], xShape[1], xShape[2], xShape[3]
	outC, kH, kW := kernelShape[0], kernelShape[2], kernelShape[3]
	outH, outW := gShape[2], gShape[3]

	result, err := tensor.NewRaw(kernelShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d kernel backward: %v", err))
	}
	g, src, dst := gradOut.AsFloat32(), input.AsFloat32(), result.AsFloat32()

	parallel.For(outC, 1, func(start, end int) {
		for oc := start; oc < end; oc++ {
			for b := 0; b < n; b++ {
				for oh := 0; oh < outH; oh++ {
					for ow := 0; ow < outW; ow++ {
						gv := g[((b*outC+oc)*outH+oh)*outW+ow]
						if gv == 0 {
							continue
						}
						for ic := 0; ic < inC; ic++ {
							for ki := 0; ki < kH; ki++ {
								ih := oh*stride + ki - padding
								if ih < 0 || ih >= inH {
									continue
								}
								for kj := 0; kj < kW; kj++ {
									iw := ow*stride + kj - padding
									if iw < 0 || iw >= inW {
										continue
									}
									dst[((oc*inC+ic)*kH+ki)*kW+kj] +=
										gv * src[((b*inC+ic)*inH+ih)*inW+iw]
								}
							}
						}
					}
				}
			}
		}
	})
	return result
}

func validateConvArgs(x, kernel *tensor.RawTensor, stride, padding int) {
	if x.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtypes %s, %s (only float32)", x.DType(), kernel.DType()))
	}
	xShape, kShape := x.Shape(), kernel.Shape()
	if len(xShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be [N, C, H, W], got %v", xShape))
	}
	if len(kShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be [outC, inC, kH, kW], got %v", kShape))
	}
	if xShape[1] != kShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d do not match kernel channels %d", xShape[1], kShape[1]))
	}
	if stride < 1 {
		panic(fmt.Sprintf("conv2d: stride must be >= 1, got %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: padding must be >= 0, got %d", padding))
	}
}
