package runtime

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// ArrayBuffer constructors for host numeric slices. Multi-byte elements
// pack little-endian, matching the engine's typed-array views.

func (c *Context) CreateArrayBufferFromBytes(data []byte) (*JSArrayBuffer, error) {
	return c.createBuffer(data)
}

func (c *Context) CreateArrayBufferFromBools(data []bool) (*JSArrayBuffer, error) {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b {
			buf[i] = 1
		}
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromInt16s(data []int16) (*JSArrayBuffer, error) {
	buf := make([]byte, 2*len(data))
	for i, n := range data {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(n))
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromInt32s(data []int32) (*JSArrayBuffer, error) {
	buf := make([]byte, 4*len(data))
	for i, n := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(n))
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromRunes(data []rune) (*JSArrayBuffer, error) {
	buf := make([]byte, 4*len(data))
	for i, r := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(r))
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromInt64s(data []int64) (*JSArrayBuffer, error) {
	buf := make([]byte, 8*len(data))
	for i, n := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(n))
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromFloat32s(data []float32) (*JSArrayBuffer, error) {
	buf := make([]byte, 4*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return c.createBuffer(buf)
}

func (c *Context) CreateArrayBufferFromFloat64s(data []float64) (*JSArrayBuffer, error) {
	buf := make([]byte, 8*len(data))
	for i, f := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	return c.createBuffer(buf)
}

func (c *Context) createBuffer(data []byte) (*JSArrayBuffer, error) {
	v, err := c.create(func() (engine.Ref, error) {
		return c.ec.CreateArrayBuffer(data)
	})
	if err != nil {
		return nil, err
	}
	return v.(*JSArrayBuffer), nil
}

// Typed readers. Each checks that the buffer length divides evenly into
// the element width.

func (b *JSArrayBuffer) ToBools() ([]bool, error) {
	raw, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, v := range raw {
		out[i] = v != 0
	}
	return out, nil
}

func (b *JSArrayBuffer) ToInt16s() ([]int16, error) {
	raw, err := b.sized(2, "int16")
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) ToInt32s() ([]int32, error) {
	raw, err := b.sized(4, "int32")
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(raw)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) ToRunes() ([]rune, error) {
	raw, err := b.sized(4, "rune")
	if err != nil {
		return nil, err
	}
	out := make([]rune, len(raw)/4)
	for i := range out {
		out[i] = rune(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) ToInt64s() ([]int64, error) {
	raw, err := b.sized(8, "int64")
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(raw)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) ToFloat32s() ([]float32, error) {
	raw, err := b.sized(4, "float32")
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) ToFloat64s() ([]float64, error) {
	raw, err := b.sized(8, "float64")
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return out, nil
}

func (b *JSArrayBuffer) sized(width int, elem string) ([]byte, error) {
	raw, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	if len(raw)%width != 0 {
		return nil, errors.InvalidData("buffer length is not a multiple of the element width", elem)
	}
	return raw, nil
}
