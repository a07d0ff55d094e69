package dataset

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeImages(t *testing.T, magic int32, images [][]byte, rows, cols int32) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, magic))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int32(len(images))))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, rows))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, cols))
	for _, img := range images {
		buf.Write(img)
	}
	return bytes.NewReader(buf.Bytes())
}

func encodeLabels(t *testing.T, magic int32, labels []byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, magic))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, int32(len(labels))))
	buf.Write(labels)
	return bytes.NewReader(buf.Bytes())
}

func TestReadIDXImagesScalesPixels(t *testing.T) {
	r := encodeImages(t, imageMagic, [][]byte{{0, 255, 128, 64}}, 2, 2)
	images, err := readIDXImages(r)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, float32(0), images[0][0])
	assert.Equal(t, float32(1), images[0][1])
	assert.InDelta(t, 128.0/255.0, float64(images[0][2]), 1e-6)
}

func TestReadIDXImagesRejectsBadMagic(t *testing.T) {
	r := encodeImages(t, 1234, [][]byte{{0}}, 1, 1)
	_, err := readIDXImages(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestReadIDXImagesTruncated(t *testing.T) {
	r := encodeImages(t, imageMagic, [][]byte{{1, 2}}, 2, 2) // claims 4 pixels
	_, err := readIDXImages(r)
	require.Error(t, err)
}

func TestReadIDXLabels(t *testing.T) {
	r := encodeLabels(t, labelMagic, []byte{3, 1, 4})
	labels, err := readIDXLabels(r)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 4}, labels)
}

func TestReadIDXLabelsRejectsBadMagic(t *testing.T) {
	r := encodeLabels(t, imageMagic, []byte{1})
	_, err := readIDXLabels(r)
	require.Error(t, err)
}

func smallDataset() *Dataset {
	images := make([][]float32, 10)
	labels := make([]int32, 10)
	for i := range images {
		images[i] = make([]float32, 4)
		images[i][0] = float32(i) / 10
		labels[i] = int32(i % 3)
	}
	return &Dataset{Images: images, Labels: labels, Rows: 2, Cols: 2}
}

func TestBatchesCoverDataset(t *testing.T) {
	d := smallDataset()
	batches := d.Batches(4, rand.New(rand.NewSource(1)))

	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size)
	assert.Equal(t, 4, batches[1].Size)
	assert.Equal(t, 2, batches[2].Size, "trailing short batch is kept")

	total := 0
	for _, b := range batches {
		total += b.Size
		assert.Len(t, b.Pixels, b.Size*4)
		assert.Len(t, b.Labels, b.Size)
	}
	assert.Equal(t, d.Len(), total)
}

func TestBatchesWithoutRNGKeepOrder(t *testing.T) {
	d := smallDataset()
	batches := d.Batches(10, nil)
	require.Len(t, batches, 1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, int32(i%3), batches[0].Labels[i])
	}
}

func TestSummarize(t *testing.T) {
	d := smallDataset()
	s := d.Summarize()
	assert.Equal(t, 10, s.Count)
	assert.Greater(t, s.StdPixel, 0.0)
	assert.Equal(t, 4, s.ClassHist[int32(0)])
	assert.Equal(t, 3, s.ClassHist[int32(1)])
	assert.Equal(t, 3, s.ClassHist[int32(2)])
}
