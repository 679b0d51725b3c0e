package chunk

import (
	"bytes"
	"io"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// Document is an in-memory [Writer]. The chunk tree is encoded only when
// the document is flushed, so nothing reaches the filesystem until every
// chunk has been written.
//
// A Document is not safe for concurrent use.
type Document struct {
	codec Codec
	root  *Chunk
}

// NewDocument returns an empty document whose root is a [FileTag] chunk.
func NewDocument(codec Codec) *Document {
	return &Document{codec: codec, root: &Chunk{Tag: FileTag}}
}

// Codec returns the codec used by [Document.Flush].
func (d *Document) Codec() Codec { return d.codec }

func (d *Document) Root() *Chunk { return d.root }

// BeginChunk appends a chunk under parent. A nil parent means the root.
func (d *Document) BeginChunk(parent *Chunk, tag Tag) *Chunk {
	if parent == nil {
		parent = d.root
	}
	c := &Chunk{Tag: tag}
	parent.Children = append(parent.Children, c)
	return c
}

func (d *Document) WriteValue(c *Chunk, name string, v Value) {
	c.Fields = append(c.Fields, Field{Name: name, Value: v})
}

func (d *Document) WriteVector(c *Chunk, name string, x, y, z float64) {
	d.WriteValue(c, name, Vector{float32(x), float32(y), float32(z)})
}

// Encode writes the encoded document to w.
func (d *Document) Encode(w io.Writer) error {
	if d.codec == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "document has no codec")
	}
	return d.codec.Encode(w, d.root)
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Flush encodes the document and atomically replaces the file at path. If
// encoding fails the destination is left untouched.
func (d *Document) Flush(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0o644)
}

var _ Writer = (*Document)(nil)
