// Package dataset loads MNIST-format image/label files and serves
// shuffled minibatches.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	imageMagic = 2051
	labelMagic = 2049
)

// ReadIDXImages parses an IDX3 image file into one float32 slice per
// image, pixels scaled to [0, 1].
func ReadIDXImages(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open images: %w", err)
	}
	defer f.Close()
	return readIDXImages(f)
}

func readIDXImages(r io.Reader) ([][]float32, error) {
	var header struct {
		Magic, Count, Rows, Cols int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if header.Magic != imageMagic {
		return nil, fmt.Errorf("bad image magic: got %d, want %d", header.Magic, imageMagic)
	}
	if header.Count <= 0 || header.Rows <= 0 || header.Cols <= 0 {
		return nil, fmt.Errorf("bad image header: count=%d rows=%d cols=%d", header.Count, header.Rows, header.Cols)
	}

	pixels := int(header.Rows) * int(header.Cols)
	raw := make([]byte, pixels)
	images := make([][]float32, header.Count)
	for i := range images {
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
		img := make([]float32, pixels)
		for j, b := range raw {
			img[j] = float32(b) / 255.0
		}
		images[i] = img
	}
	return images, nil
}

// ReadIDXLabels parses an IDX1 label file into int32 class indices.
func ReadIDXLabels(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()
	return readIDXLabels(f)
}

func readIDXLabels(r io.Reader) ([]int32, error) {
	var header struct {
		Magic, Count int32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}
	if header.Magic != labelMagic {
		return nil, fmt.Errorf("bad label magic: got %d, want %d", header.Magic, labelMagic)
	}
	if header.Count <= 0 {
		return nil, fmt.Errorf("bad label header: count=%d", header.Count)
	}

	raw := make([]byte, header.Count)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	labels := make([]int32, header.Count)
	for i, b := range raw {
		labels[i] = int32(b)
	}
	return labels, nil
}
