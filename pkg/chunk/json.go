package chunk

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
)

type jsonCodec struct{}

func (jsonCodec) Name() string      { return "json" }
func (jsonCodec) Extension() string { return ".json" }

type jsonChunk struct {
	Type     string      `json:"type"`
	Fields   []jsonField `json:"fields,omitempty"`
	Children []jsonChunk `json:"children,omitempty"`
}

type jsonField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Encode writes the chunk tree as indented JSON. Vector values are
// three-element arrays.
func (jsonCodec) Encode(w io.Writer, root *Chunk) error {
	data, err := json.MarshalIndent(toJSON(root), "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func toJSON(c *Chunk) jsonChunk {
	out := jsonChunk{Type: c.Tag.String()}
	for _, f := range c.Fields {
		jf := jsonField{Name: f.Name, Type: f.Value.Kind().String()}
		switch v := f.Value.(type) {
		case Vector:
			jf.Value = [3]float32(v)
		default:
			jf.Value = v
		}
		out.Fields = append(out.Fields, jf)
	}
	for _, ch := range c.Children {
		out.Children = append(out.Children, toJSON(ch))
	}
	return out
}
