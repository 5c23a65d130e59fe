// Package serialization stores computed tensors in the SafeTensors format.
//
// Layout:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw little-endian bytes]
//
// The header's __metadata__ carries a "sha256" entry over the data section,
// verified on read.
package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/forcescale/internal/tensor"
)

// ChecksumKey is the metadata key holding the data checksum.
const ChecksumKey = "sha256"

const maxHeaderSize = 100 * 1024 * 1024

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to path in alphabetical order by name.
func WriteSafeTensors(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	//nolint:gosec // G304: output path is chosen by the user
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Encode(file, tensors, metadata); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Encode writes tensors in SafeTensors format to w.
func Encode(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	var data []byte
	for _, name := range names {
		raw := tensors[name]
		if raw == nil || raw.IsReleased() {
			return fmt.Errorf("%s: %w", name, ErrReleasedTensor)
		}

		start := int64(len(data))
		data = appendValues(data, raw)

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = SafeTensorHeader{
			DType:       dtypeToSafeTensors(raw.DType()),
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ChecksumKey] = ComputeChecksum(data)
	header["__metadata__"] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}

// ReadSafeTensors loads every tensor and the metadata from path.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: input path is chosen by the user
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Decode reads a SafeTensors stream, validating offsets and the checksum
// when one is present.
func Decode(r io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	var metadata map[string]string
	headers := make(map[string]SafeTensorHeader, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse tensor %q: %w", name, err)
		}
		headers[name] = h
	}

	if sum, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, nil, err
		}
	}
	if err := validateOffsets(headers, int64(len(data))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.RawTensor, len(headers))
	for name, h := range headers {
		t, err := decodeTensor(name, h, data)
		if err != nil {
			return nil, nil, err
		}
		tensors[name] = t
	}
	return tensors, metadata, nil
}

// validateOffsets checks that every tensor lies inside the data section and
// that no two tensors overlap.
func validateOffsets(headers map[string]SafeTensorHeader, dataSize int64) error {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return headers[names[i]].DataOffsets[0] < headers[names[j]].DataOffsets[0]
	})

	var prevEnd int64
	prev := ""
	for _, name := range names {
		start, end := headers[name].DataOffsets[0], headers[name].DataOffsets[1]
		if start < 0 || end < start || end > dataSize {
			return &ValidationError{Tensor: name, Err: ErrOutOfBounds,
				Detail: fmt.Sprintf("offsets [%d, %d) with %d data bytes", start, end, dataSize)}
		}
		if start < prevEnd {
			return &ValidationError{Tensor: name, Err: ErrOffsetOverlap,
				Detail: fmt.Sprintf("starts at %d before %q ends at %d", start, prev, prevEnd)}
		}
		prevEnd, prev = end, name
	}
	return nil
}

func decodeTensor(name string, h SafeTensorHeader, data []byte) (*tensor.RawTensor, error) {
	dtype, ok := safeTensorsToDType(h.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %q: %w: %s", name, ErrUnsupportedDType, h.DType)
	}

	// The shape must match the data range before anything is allocated.
	buf := data[h.DataOffsets[0]:h.DataOffsets[1]]
	size := dtype.Size()
	elems := int64(1)
	for _, dim := range h.Shape {
		if dim < 0 || (dim > 0 && elems > math.MaxInt64/dim) {
			return nil, &ValidationError{Tensor: name, Err: ErrOutOfBounds,
				Detail: fmt.Sprintf("invalid shape %v", h.Shape)}
		}
		elems *= dim
	}
	if elems > int64(len(buf))/int64(size) || elems*int64(size) != int64(len(buf)) {
		return nil, &ValidationError{Tensor: name, Err: ErrOutOfBounds,
			Detail: fmt.Sprintf("%d bytes for shape %v %s", len(buf), h.Shape, dtype)}
	}

	shape := make(tensor.Shape, len(h.Shape))
	for i, dim := range h.Shape {
		shape[i] = int(dim)
	}
	t, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", name, err)
	}

	for i := range t.NumElements() {
		b := buf[i*size : (i+1)*size]
		switch dtype {
		case tensor.Float16:
			t.Set(i, float64(tensor.FP16ToFloat32(binary.LittleEndian.Uint16(b))))
		case tensor.Float32:
			t.Set(i, float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
		default:
			t.Set(i, math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}
	}
	return t, nil
}

func appendValues(dst []byte, raw *tensor.RawTensor) []byte {
	for _, v := range raw.Data() {
		switch raw.DType() {
		case tensor.Float16:
			dst = binary.LittleEndian.AppendUint16(dst, tensor.Float32ToFP16(float32(v)))
		case tensor.Float32:
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
		default:
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	return dst
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) string {
	switch dt {
	case tensor.Float16:
		return "F16"
	case tensor.Float32:
		return "F32"
	default:
		return "F64"
	}
}

func safeTensorsToDType(s string) (tensor.DataType, bool) {
	switch s {
	case "F16":
		return tensor.Float16, true
	case "F32":
		return tensor.Float32, true
	case "F64":
		return tensor.Float64, true
	default:
		return 0, false
	}
}
