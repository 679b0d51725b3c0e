package chunk

import (
	"io"
	"sort"
	"strings"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// Codec turns a chunk tree into bytes.
type Codec interface {
	// Name is the format identifier used on the command line.
	Name() string
	// Extension is the conventional file extension, including the dot.
	Extension() string
	// Encode writes root and everything below it to w.
	Encode(w io.Writer, root *Chunk) error
}

// The codecs shipped with this package.
var (
	P3D  Codec = p3dCodec{}
	XML  Codec = xmlCodec{}
	JSON Codec = jsonCodec{}
)

var codecs = map[string]Codec{
	P3D.Name():  P3D,
	XML.Name():  XML,
	JSON.Name(): JSON,
}

// Lookup returns the codec registered under name, ignoring case.
func Lookup(name string) (Codec, error) {
	if c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat,
		"unknown format %q (want one of %s)", name, strings.Join(Formats(), ", "))
}

// Formats lists the registered codec names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(codecs))
	for n := range codecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
