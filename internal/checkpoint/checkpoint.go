// Package checkpoint persists model parameters and batch-norm running
// statistics in a single binary snapshot: a fixed header, a JSON
// manifest, a float32 payload and a CRC over the payload.
package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
)

const (
	magic   uint32 = 0x53545243 // "STRC"
	version uint32 = 1
)

// Tensor is one named parameter's values in row-major order.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"-"`
}

// RunningStats is one normalization site's persisted estimates. These
// ride along in the manifest; without them a restored model could not
// run inference-mode batch norm.
type RunningStats struct {
	Mean     []float32 `json:"mean"`
	Variance []float32 `json:"variance"`
}

// Snapshot is everything a training run needs to resume or serve.
type Snapshot struct {
	Tensors      map[string]Tensor
	RunningStats map[string]RunningStats
}

type manifest struct {
	Tensors map[string]manifestTensor `json:"tensors"`
	Stats   map[string]RunningStats   `json:"stats"`
}

type manifestTensor struct {
	Shape  []int `json:"shape"`
	Offset int   `json:"offset"` // float32 index into the payload
	Count  int   `json:"count"`
}

// Save writes the snapshot atomically: a temp file renamed over path.
func Save(path string, snap *Snapshot) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}
	if err := write(f, snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("checkpoint save: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("checkpoint save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("checkpoint save: %w", err)
	}
	return nil
}

func write(w io.Writer, snap *Snapshot) error {
	m := manifest{
		Tensors: make(map[string]manifestTensor, len(snap.Tensors)),
		Stats:   snap.RunningStats,
	}
	if m.Stats == nil {
		m.Stats = map[string]RunningStats{}
	}

	// Lay tensors out in the payload in manifest-build order; offsets
	// make the layout explicit so readers need not replay it.
	var payload []float32
	for name, t := range snap.Tensors {
		count := 1
		for _, d := range t.Shape {
			count *= d
		}
		if count != len(t.Data) {
			return fmt.Errorf("tensor %q: shape %v wants %d values, have %d", name, t.Shape, count, len(t.Data))
		}
		m.Tensors[name] = manifestTensor{Shape: t.Shape, Offset: len(payload), Count: count}
		payload = append(payload, t.Data...)
	}

	header, err := json.Marshal(m)
	if err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(header))); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}

	raw := make([]byte, len(payload)*4)
	for i, v := range payload {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(payload))); err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, crc32.ChecksumIEEE(raw))
}

// Load reads and validates a snapshot.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint load: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("checkpoint load: %w", err)
	}
	snap, err := read(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("checkpoint load %s: %w", path, err)
	}
	return snap, nil
}

// fixedOverhead is every byte outside the manifest and payload: magic,
// version, the two length fields and the trailing CRC.
const fixedOverhead = 4 + 4 + 8 + 8 + 4

// read decodes a snapshot from r, which holds size bytes in total. The
// length fields come from the file, so they are checked against size
// before anything is allocated.
func read(r io.Reader, size int64) (*Snapshot, error) {
	var gotMagic, gotVersion uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("bad magic 0x%08x", gotMagic)
	}
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return nil, err
	}
	if gotVersion != version {
		return nil, fmt.Errorf("unsupported version %d", gotVersion)
	}
	if size < fixedOverhead {
		return nil, fmt.Errorf("truncated: %d bytes", size)
	}

	var headerLen uint64
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, err
	}
	if headerLen > uint64(size)-fixedOverhead {
		return nil, fmt.Errorf("manifest length %d exceeds file size %d", headerLen, size)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(header, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	var payloadLen uint64
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return nil, err
	}
	if payloadLen > (uint64(size)-fixedOverhead-headerLen)/4 {
		return nil, fmt.Errorf("payload length %d exceeds file size %d", payloadLen, size)
	}
	raw := make([]byte, payloadLen*4)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	var gotCRC uint32
	if err := binary.Read(r, binary.LittleEndian, &gotCRC); err != nil {
		return nil, err
	}
	if want := crc32.ChecksumIEEE(raw); gotCRC != want {
		return nil, fmt.Errorf("payload checksum mismatch: file says 0x%08x, computed 0x%08x", gotCRC, want)
	}

	payload := make([]float32, payloadLen)
	for i := range payload {
		payload[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	snap := &Snapshot{
		Tensors:      make(map[string]Tensor, len(m.Tensors)),
		RunningStats: m.Stats,
	}
	for name, mt := range m.Tensors {
		if mt.Offset < 0 || mt.Offset+mt.Count > len(payload) {
			return nil, fmt.Errorf("tensor %q: range [%d, %d) outside payload of %d",
				name, mt.Offset, mt.Offset+mt.Count, len(payload))
		}
		snap.Tensors[name] = Tensor{
			Shape: mt.Shape,
			Data:  payload[mt.Offset : mt.Offset+mt.Count],
		}
	}
	return snap, nil
}
