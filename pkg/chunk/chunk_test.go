package chunk

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridtree/pkg/errors"
)

func sampleDocument(codec Codec) *Document {
	doc := NewDocument(codec)
	tc := doc.BeginChunk(doc.Root(), 0x3F00004)
	doc.WriteVector(tc, "Min", 0, 1.5, -2)
	doc.WriteValue(tc, "Count", Uint32(3))
	nc := doc.BeginChunk(tc, 0x3F00005)
	doc.WriteValue(nc, "Offset", Int32(-1))
	doc.WriteValue(nc, "Position", Float32(20))
	return doc
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "0x03F00004", Tag(0x3F00004).String())
	assert.Equal(t, "0xFF443350", FileTag.String())
}

func TestDocumentBuildsTree(t *testing.T) {
	doc := sampleDocument(P3D)
	root := doc.Root()

	require.Equal(t, FileTag, root.Tag)
	require.Len(t, root.Children, 1)

	tc := root.Children[0]
	require.Len(t, tc.Fields, 2)
	v, ok := tc.Field("Min")
	require.True(t, ok)
	assert.Equal(t, Vector{0, 1.5, -2}, v)

	_, ok = tc.Field("Missing")
	assert.False(t, ok)

	nodes := tc.Find(0x3F00005)
	require.Len(t, nodes, 1)
	assert.Empty(t, tc.Find(0x3F00006))
}

func TestBeginChunkNilParent(t *testing.T) {
	doc := NewDocument(P3D)
	c := doc.BeginChunk(nil, 1)
	require.Len(t, doc.Root().Children, 1)
	assert.Same(t, c, doc.Root().Children[0])
}

func TestP3DLayout(t *testing.T) {
	doc := NewDocument(P3D)
	c := doc.BeginChunk(doc.Root(), 0x3F00004)
	doc.WriteValue(c, "N", Uint32(7))

	got, err := doc.Bytes()
	require.NoError(t, err)

	want := []byte{
		0x50, 0x33, 0x44, 0xFF, 0x0C, 0, 0, 0, 0x1C, 0, 0, 0,
		0x04, 0x00, 0xF0, 0x03, 0x10, 0, 0, 0, 0x10, 0, 0, 0,
		0x07, 0, 0, 0,
	}
	assert.Equal(t, want, got)
}

func TestP3DRoundTrip(t *testing.T) {
	doc := sampleDocument(P3D)
	data, err := doc.Bytes()
	require.NoError(t, err)

	root, err := DecodeP3D(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, FileTag, root.Tag)
	assert.Empty(t, root.Raw)

	var compare func(want, got *Chunk)
	compare = func(want, got *Chunk) {
		assert.Equal(t, want.Tag, got.Tag)
		assert.Equal(t, want.Payload(), got.Payload())
		require.Len(t, got.Children, len(want.Children))
		for i := range want.Children {
			compare(want.Children[i], got.Children[i])
		}
	}
	compare(doc.Root(), root)

	tc := root.Children[0]
	vals, err := tc.Decode(KindVector, KindUint32)
	require.NoError(t, err)
	assert.Equal(t, []Value{Vector{0, 1.5, -2}, Uint32(3)}, vals)

	vals, err = tc.Children[0].Decode(KindInt32, KindFloat32)
	require.NoError(t, err)
	assert.Equal(t, []Value{Int32(-1), Float32(20)}, vals)

	_, err = tc.Decode(KindUint32)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestDecodeP3DErrors(t *testing.T) {
	good, err := sampleDocument(P3D).Bytes()
	require.NoError(t, err)

	wrongTag := append([]byte(nil), good...)
	wrongTag[0] = 0x51

	badSize := append([]byte(nil), good...)
	badSize[4] = 0x08

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated header", good[:8]},
		{"truncated body", good[:len(good)-4]},
		{"wrong file tag", wrongTag},
		{"data size below header", badSize},
		{"trailing bytes", append(append([]byte(nil), good...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeP3D(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestXMLCodec(t *testing.T) {
	data, err := sampleDocument(XML).Bytes()
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<Chunk Type="0x03F00004">`)
	assert.Contains(t, out, `<Vector Name="Min" X="0" Y="1.5" Z="-2">`)
	assert.Contains(t, out, `<Value Name="Count" Type="uint32" Value="3">`)
	assert.Contains(t, out, `<Value Name="Offset" Type="int32" Value="-1">`)

	type value struct {
		Name  string `xml:"Name,attr"`
		Type  string `xml:"Type,attr"`
		Value string `xml:"Value,attr"`
	}
	type chunk struct {
		Type   string  `xml:"Type,attr"`
		Values []value `xml:"Value"`
		Chunks []chunk `xml:"Chunk"`
	}
	var file struct {
		XMLName xml.Name `xml:"Pure3DFile"`
		Chunks  []chunk  `xml:"Chunk"`
	}
	require.NoError(t, xml.Unmarshal(data, &file))
	require.Len(t, file.Chunks, 1)
	require.Len(t, file.Chunks[0].Chunks, 1)
	assert.Equal(t, []value{
		{Name: "Offset", Type: "int32", Value: "-1"},
		{Name: "Position", Type: "float32", Value: "20"},
	}, file.Chunks[0].Chunks[0].Values)
}

func TestJSONCodec(t *testing.T) {
	data, err := sampleDocument(JSON).Bytes()
	require.NoError(t, err)

	var got struct {
		Type     string `json:"type"`
		Children []struct {
			Type   string `json:"type"`
			Fields []struct {
				Name  string          `json:"name"`
				Type  string          `json:"type"`
				Value json.RawMessage `json:"value"`
			} `json:"fields"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "0xFF443350", got.Type)
	require.Len(t, got.Children, 1)
	fields := got.Children[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "vector", fields[0].Type)
	assert.JSONEq(t, `[0, 1.5, -2]`, string(fields[0].Value))
	assert.Equal(t, "uint32", fields[1].Type)
	assert.JSONEq(t, `3`, string(fields[1].Value))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"p3d", "XML", " json "} {
		c, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), c.Name())
	}

	_, err := Lookup("obj")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	assert.Equal(t, []string{"json", "p3d", "xml"}, Formats())
}

type failingCodec struct{}

func (failingCodec) Name() string      { return "fail" }
func (failingCodec) Extension() string { return ".fail" }
func (failingCodec) Encode(io.Writer, *Chunk) error {
	return errors.New(errors.ErrCodeInternal, "encoder exploded")
}

func TestFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.p3d")

	require.NoError(t, sampleDocument(P3D).Flush(path))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := sampleDocument(P3D).Bytes()
	require.NoError(t, err)
	assert.Equal(t, want, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFlushFailureKeepsDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.p3d")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := sampleDocument(failingCodec{}).Flush(path)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestFlushErrors(t *testing.T) {
	err := NewDocument(nil).Flush(filepath.Join(t.TempDir(), "x.p3d"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))

	err = sampleDocument(P3D).Flush(filepath.Join(t.TempDir(), "missing", "x.p3d"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
