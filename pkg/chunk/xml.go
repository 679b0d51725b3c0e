package chunk

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

type xmlCodec struct{}

func (xmlCodec) Name() string      { return "xml" }
func (xmlCodec) Extension() string { return ".p3dxml" }

// Encode writes the p3dxml form: the root becomes a Pure3DFile element and
// every other chunk a Chunk element whose Type attribute is the hex tag.
func (xmlCodec) Encode(w io.Writer, root *Chunk) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: "Pure3DFile"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeXMLBody(enc, root); err != nil {
		return err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeXMLBody(enc *xml.Encoder, c *Chunk) error {
	for _, f := range c.Fields {
		if err := emptyElement(enc, fieldElement(f)); err != nil {
			return err
		}
	}
	for _, ch := range c.Children {
		start := xml.StartElement{
			Name: xml.Name{Local: "Chunk"},
			Attr: []xml.Attr{attr("Type", ch.Tag.String())},
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := encodeXMLBody(enc, ch); err != nil {
			return err
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	return nil
}

func fieldElement(f Field) xml.StartElement {
	if v, ok := f.Value.(Vector); ok {
		return xml.StartElement{
			Name: xml.Name{Local: "Vector"},
			Attr: []xml.Attr{
				attr("Name", f.Name),
				attr("X", formatFloat(v[0])),
				attr("Y", formatFloat(v[1])),
				attr("Z", formatFloat(v[2])),
			},
		}
	}
	return xml.StartElement{
		Name: xml.Name{Local: "Value"},
		Attr: []xml.Attr{
			attr("Name", f.Name),
			attr("Type", f.Value.Kind().String()),
			attr("Value", FormatValue(f.Value)),
		},
	}
}

func emptyElement(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// FormatValue renders a value as text. Vectors render as "x y z".
func FormatValue(v Value) string {
	switch v := v.(type) {
	case Int32:
		return strconv.FormatInt(int64(v), 10)
	case Uint32:
		return strconv.FormatUint(uint64(v), 10)
	case Float32:
		return formatFloat(float32(v))
	case Vector:
		return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
	}
	return fmt.Sprint(v)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
