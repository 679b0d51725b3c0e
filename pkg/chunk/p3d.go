package chunk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// headerSize is the fixed prefix of every chunk: tag, data size, chunk size.
const headerSize = 12

type p3dCodec struct{}

func (p3dCodec) Name() string      { return "p3d" }
func (p3dCodec) Extension() string { return ".p3d" }

// Encode writes root as a binary chunk. Sizes are computed up front so the
// output is produced in a single pass.
func (p3dCodec) Encode(w io.Writer, root *Chunk) error {
	if _, err := measure(root); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := writeP3D(bw, root); err != nil {
		return err
	}
	return bw.Flush()
}

// measure returns the total encoded size of c including its sub-chunks.
func measure(c *Chunk) (int, error) {
	total := headerSize + len(c.Payload())
	for _, ch := range c.Children {
		n, err := measure(ch)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if uint64(total) > math.MaxUint32 {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "chunk %s exceeds 4 GiB", c.Tag)
	}
	return total, nil
}

func writeP3D(w io.Writer, c *Chunk) error {
	payload := c.Payload()
	total, _ := measure(c)

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(c.Tag))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(headerSize+len(payload)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(total))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write chunk %s: %w", c.Tag, err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write chunk %s: %w", c.Tag, err)
	}
	for _, ch := range c.Children {
		if err := writeP3D(w, ch); err != nil {
			return err
		}
	}
	return nil
}

// DecodeP3D reads a binary chunk file. The outermost chunk must carry
// [FileTag]. Every decoded chunk has Raw set and no Fields.
func DecodeP3D(r io.Reader) (*Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read p3d: %w", err)
	}
	root, n, err := decodeChunk(data, 0)
	if err != nil {
		return nil, err
	}
	if root.Tag != FileTag {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "file chunk tag is %s, want %s", root.Tag, FileTag)
	}
	if n != len(data) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "%d trailing bytes after file chunk", len(data)-n)
	}
	return root, nil
}

// decodeChunk parses the chunk at the start of b; off is b's position in
// the file and only feeds error messages. It returns the chunk's total size.
func decodeChunk(b []byte, off int) (*Chunk, int, error) {
	if len(b) < headerSize {
		return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "truncated chunk header at offset %d", off)
	}
	tag := Tag(binary.LittleEndian.Uint32(b[0:]))
	dataSize := int(binary.LittleEndian.Uint32(b[4:]))
	chunkSize := int(binary.LittleEndian.Uint32(b[8:]))
	if dataSize < headerSize || chunkSize < dataSize || chunkSize > len(b) {
		return nil, 0, errors.New(errors.ErrCodeInvalidFormat,
			"chunk %s at offset %d has bad sizes data=%d chunk=%d (%d bytes left)", tag, off, dataSize, chunkSize, len(b))
	}

	c := &Chunk{Tag: tag, Raw: b[headerSize:dataSize:dataSize]}
	for pos := dataSize; pos < chunkSize; {
		ch, n, err := decodeChunk(b[pos:chunkSize], off+pos)
		if err != nil {
			return nil, 0, err
		}
		c.Children = append(c.Children, ch)
		pos += n
	}
	return c, chunkSize, nil
}
