package chunk

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// Tag identifies a chunk type.
type Tag uint32

// FileTag is the tag of the outermost chunk of every P3D file ("P3D\xff").
const FileTag Tag = 0xFF443350

// String formats the tag the way p3dxml does, e.g. "0x03F00004".
func (t Tag) String() string { return fmt.Sprintf("0x%08X", uint32(t)) }

// Kind is the wire type of a field.
type Kind uint8

const (
	KindInt32 Kind = iota
	KindUint32
	KindFloat32
	KindVector
)

var kindNames = [...]string{
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindFloat32: "float32",
	KindVector:  "vector",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Size returns the encoded size of a field of this kind in bytes.
func (k Kind) Size() int {
	if k == KindVector {
		return 12
	}
	return 4
}

// Value is a typed field value: [Int32], [Uint32], [Float32] or [Vector].
type Value interface {
	Kind() Kind
	appendTo(b []byte) []byte
}

type (
	Int32   int32
	Uint32  uint32
	Float32 float32
	Vector  [3]float32
)

func (Int32) Kind() Kind   { return KindInt32 }
func (Uint32) Kind() Kind  { return KindUint32 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Vector) Kind() Kind  { return KindVector }

func (v Int32) appendTo(b []byte) []byte  { return binary.LittleEndian.AppendUint32(b, uint32(v)) }
func (v Uint32) appendTo(b []byte) []byte { return binary.LittleEndian.AppendUint32(b, uint32(v)) }
func (v Float32) appendTo(b []byte) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(v)))
}
func (v Vector) appendTo(b []byte) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// Field is one named value inside a chunk.
type Field struct {
	Name  string
	Value Value
}

// Chunk is a node of the chunk tree.
//
// Chunks built through a [Writer] carry Fields. Chunks read by [DecodeP3D]
// carry Raw instead, since the binary form does not record field names or
// types.
type Chunk struct {
	Tag      Tag
	Fields   []Field
	Raw      []byte
	Children []*Chunk
}

// Field returns the value of the first field called name.
func (c *Chunk) Field(name string) (Value, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Find returns the direct children with the given tag, in order.
func (c *Chunk) Find(tag Tag) []*Chunk {
	var out []*Chunk
	for _, ch := range c.Children {
		if ch.Tag == tag {
			out = append(out, ch)
		}
	}
	return out
}

// Payload returns the binary payload of the chunk: Raw when the chunk was
// decoded, otherwise the fields encoded in order.
func (c *Chunk) Payload() []byte {
	if c.Raw != nil {
		return c.Raw
	}
	var b []byte
	for _, f := range c.Fields {
		b = f.Value.appendTo(b)
	}
	return b
}

// Decode interprets the payload as a sequence of fields of the given kinds.
// The payload length must match the layout exactly.
func (c *Chunk) Decode(kinds ...Kind) ([]Value, error) {
	p := c.Payload()
	want := 0
	for _, k := range kinds {
		want += k.Size()
	}
	if len(p) != want {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"chunk %s payload is %d bytes, layout needs %d", c.Tag, len(p), want)
	}

	out := make([]Value, len(kinds))
	for i, k := range kinds {
		switch k {
		case KindInt32:
			out[i] = Int32(binary.LittleEndian.Uint32(p))
		case KindUint32:
			out[i] = Uint32(binary.LittleEndian.Uint32(p))
		case KindFloat32:
			out[i] = Float32(math.Float32frombits(binary.LittleEndian.Uint32(p)))
		case KindVector:
			var v Vector
			for j := range v {
				v[j] = math.Float32frombits(binary.LittleEndian.Uint32(p[4*j:]))
			}
			out[i] = v
		default:
			return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown field kind %d", k)
		}
		p = p[k.Size():]
	}
	return out, nil
}

// Writer is the capability a chunk producer needs. Implementations decide
// where the chunks end up; Flush makes them durable at path.
type Writer interface {
	// Root returns the top-level chunk new chunks hang from.
	Root() *Chunk

	// BeginChunk appends a new chunk with the given tag under parent and
	// returns it.
	BeginChunk(parent *Chunk, tag Tag) *Chunk

	// WriteValue appends a scalar field to c.
	WriteValue(c *Chunk, name string, v Value)

	// WriteVector appends a three-component vector field to c.
	WriteVector(c *Chunk, name string, x, y, z float64)

	// Flush persists every chunk written so far to path.
	Flush(path string) error
}
