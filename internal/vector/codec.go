package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FormatError reports a stored embedding blob that cannot be decoded. It
// indicates corruption in the backing store, so callers surface it rather
// than skipping the affected row.
type FormatError struct {
	Len int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("vector: invalid embedding blob length %d (not a multiple of 4)", e.Len)
}

// Encode serializes a vector as little-endian IEEE 754 float32 values, four
// bytes per element. An empty vector encodes to nil.
func Encode(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode is the exact inverse of Encode: Decode(Encode(v)) reproduces v
// bit-for-bit. It returns a *FormatError when the blob length is not a whole
// number of float32 elements. An empty blob decodes to nil.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, &FormatError{Len: len(b)}
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
