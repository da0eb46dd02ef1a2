package snapshot

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// encoder 按protobuf wire格式追加字段，零值字段省略
type encoder struct {
	b []byte
}

func (e *encoder) int(num protowire.Number, v int) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

// 即使为0也写入，用于区分“有值”与“无值”
func (e *encoder) presentInt(num protowire.Number, v int) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if !v {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) double(num protowire.Number, v float64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(v))
}

func (e *encoder) string(num protowire.Number, v string) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) packed(num protowire.Number, vs []int) {
	if len(vs) == 0 {
		return
	}
	var inner []byte
	for _, v := range vs {
		inner = protowire.AppendVarint(inner, uint64(int64(v)))
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, inner)
}

// 嵌套消息，空消息也会写入
func (e *encoder) message(num protowire.Number, fill func(e *encoder)) {
	inner := &encoder{}
	fill(inner)
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, inner.b)
}

// field 解析出的一个字段
type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64 // varint与fixed64
	bytes []byte
}

func schemaError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSnapshotSchema, fmt.Sprintf(format, args...))
}

// 依次访问消息中的字段，未知编号的字段会被传入fn，由fn自行忽略
func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return schemaError("bad tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.value, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.value, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return schemaError("field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return schemaError("field %d has wire type %d, want %d", f.num, f.typ, typ)
	}
	return nil
}

func (f field) int() (int, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return 0, err
	}
	return int(int64(f.value)), nil
}

func (f field) bool() (bool, error) {
	if err := f.expect(protowire.VarintType); err != nil {
		return false, err
	}
	return protowire.DecodeBool(f.value), nil
}

func (f field) double() (float64, error) {
	if err := f.expect(protowire.Fixed64Type); err != nil {
		return 0, err
	}
	return math.Float64frombits(f.value), nil
}

func (f field) string() (string, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return "", err
	}
	return string(f.bytes), nil
}

func (f field) message() ([]byte, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	return f.bytes, nil
}

// 兼容packed与逐个写入两种形式
func (f field) appendInts(dst []int) ([]int, error) {
	switch f.typ {
	case protowire.VarintType:
		return append(dst, int(int64(f.value))), nil
	case protowire.BytesType:
		b := f.bytes
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, schemaError("packed field %d: %v", f.num, protowire.ParseError(n))
			}
			dst = append(dst, int(int64(v)))
			b = b[n:]
		}
		return dst, nil
	default:
		return nil, schemaError("field %d has wire type %d, want packed varints", f.num, f.typ)
	}
}
