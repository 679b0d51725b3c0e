package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/gridtree/pkg/errors"
)

// LoadConfig reads Options from a .toml, .yaml/.yml or .json file.
// Unknown keys fail with INVALID_CONFIG. Relative markers_file, output and
// dump paths are resolved against the config file's directory.
//
// The result is not validated; callers apply overrides first and then call
// [Options.ValidateAndSetDefaults].
func LoadConfig(path string) (Options, error) {
	var opts Options

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &opts)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return opts, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &opts, yaml.DisallowUnknownField()); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
	default:
		return opts, errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q", path, ext)
	}

	dir := filepath.Dir(path)
	opts.MarkersFile = resolve(dir, opts.MarkersFile)
	opts.Output = resolve(dir, opts.Output)
	opts.DumpPath = resolve(dir, opts.DumpPath)
	return opts, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
