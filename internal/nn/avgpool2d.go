package nn

import "github.com/strand-ml/strand/internal/tensor"

// AvgPool2D downsamples NCHW input by averaging square windows.
type AvgPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
}

func NewAvgPool2D[B tensor.Backend](kernelSize, stride int) *AvgPool2D[B] {
	return &AvgPool2D[B]{kernelSize: kernelSize, stride: stride}
}

func (p *AvgPool2D[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	return x.AvgPool2D(p.kernelSize, p.stride)
}

func (p *AvgPool2D[B]) Parameters() []*Parameter[B] { return nil }
