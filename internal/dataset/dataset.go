package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Dataset is a labeled image collection. Images are flat [0,1] pixel
// slices of uniform size; Labels are class indices.
type Dataset struct {
	Images [][]float32
	Labels []int32
	Rows   int
	Cols   int
}

// Load reads paired IDX image/label files.
func Load(imagePath, labelPath string) (*Dataset, error) {
	images, err := ReadIDXImages(imagePath)
	if err != nil {
		return nil, err
	}
	labels, err := ReadIDXLabels(labelPath)
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("dataset mismatch: %d images, %d labels", len(images), len(labels))
	}
	rows, cols := 28, 28
	if len(images) > 0 && len(images[0]) != rows*cols {
		return nil, fmt.Errorf("unexpected image size %d, want %d", len(images[0]), rows*cols)
	}
	return &Dataset{Images: images, Labels: labels, Rows: rows, Cols: cols}, nil
}

// Len returns the example count.
func (d *Dataset) Len() int { return len(d.Images) }

// Batch is one minibatch in training layout: Pixels is row-major
// [batch, pixels], Labels is [batch].
type Batch struct {
	Pixels []float32
	Labels []int32
	Size   int
}

// Batches returns minibatches covering the dataset once. A non-nil rng
// shuffles the example order; the trailing short batch is kept.
func (d *Dataset) Batches(batchSize int, rng *rand.Rand) []Batch {
	if batchSize < 1 {
		panic(fmt.Sprintf("batch size must be >= 1, got %d", batchSize))
	}
	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	pixels := d.Rows * d.Cols
	var batches []Batch
	for start := 0; start < len(order); start += batchSize {
		end := min(start+batchSize, len(order))
		b := Batch{
			Pixels: make([]float32, (end-start)*pixels),
			Labels: make([]int32, end-start),
			Size:   end - start,
		}
		for i, idx := range order[start:end] {
			copy(b.Pixels[i*pixels:(i+1)*pixels], d.Images[idx])
			b.Labels[i] = d.Labels[idx]
		}
		batches = append(batches, b)
	}
	return batches
}

// Summary reports distribution statistics over per-image mean
// intensities; useful as a sanity check that a file parsed as actual
// image data rather than garbage.
type Summary struct {
	Count     int
	MeanPixel float64
	StdPixel  float64
	ClassHist map[int32]int
}

// Summarize computes the dataset summary.
func (d *Dataset) Summarize() Summary {
	means := make([]float64, d.Len())
	for i, img := range d.Images {
		var sum float64
		for _, p := range img {
			sum += float64(p)
		}
		means[i] = sum / float64(len(img))
	}

	hist := make(map[int32]int)
	for _, l := range d.Labels {
		hist[l]++
	}

	mean, std := stat.MeanStdDev(means, nil)
	return Summary{
		Count:     d.Len(),
		MeanPixel: mean,
		StdPixel:  std,
		ClassHist: hist,
	}
}
