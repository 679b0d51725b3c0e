package io

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
)

type markerFile struct {
	Markers []point `json:"markers"`
}

// point decodes either [x, y, z] (z optional) or {"x":..,"y":..,"z":..}.
type point geom.Vec3

func (p *point) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var xyz []float64
		if err := json.Unmarshal(data, &xyz); err != nil {
			return err
		}
		if len(xyz) != 2 && len(xyz) != 3 {
			return fmt.Errorf("marker %s: want 2 or 3 coordinates, got %d", data, len(xyz))
		}
		*p = point{X: xyz[0], Y: xyz[1]}
		if len(xyz) == 3 {
			p.Z = xyz[2]
		}
		return nil
	}
	var v geom.Vec3
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = point(v)
	return nil
}

func (p point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.X, p.Y, p.Z})
}

// ReadMarkers decodes a marker set from r. Malformed input fails with
// INVALID_FORMAT. An empty set is returned as-is; callers decide whether
// that is an error.
func ReadMarkers(r io.Reader) ([]geom.Vec3, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markers: %w", err)
	}

	var pts []point
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		err = json.Unmarshal(trimmed, &pts)
	default:
		var f markerFile
		err = json.Unmarshal(trimmed, &f)
		pts = f.Markers
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode markers")
	}

	markers := make([]geom.Vec3, len(pts))
	for i, p := range pts {
		markers[i] = geom.Vec3(p)
	}
	return markers, nil
}

// ImportMarkers reads a marker set from the JSON file at path.
func ImportMarkers(path string) ([]geom.Vec3, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "marker file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	markers, err := ReadMarkers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return markers, nil
}

// WriteMarkers encodes markers to w in the {"markers": [[x, y, z], ...]}
// form.
func WriteMarkers(w io.Writer, markers []geom.Vec3) error {
	f := markerFile{Markers: make([]point, len(markers))}
	for i, m := range markers {
		f.Markers[i] = point(m)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ExportMarkers atomically writes markers to the JSON file at path.
func ExportMarkers(markers []geom.Vec3, path string) error {
	var buf bytes.Buffer
	if err := WriteMarkers(&buf, markers); err != nil {
		return err
	}
	return chunk.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
