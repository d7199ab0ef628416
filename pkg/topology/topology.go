package topology

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/api"
	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

// ErrUnsupportedFormat is returned for topology files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported topology format")

// Format names a topology file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatJSON:
		return json.Parser(), nil
	case FormatTOML:
		return toml.Parser(), nil
	case FormatYAML:
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Load reads a topology file. The file has the same shape as an HTTP request:
// an edges list of from/to/weight entries and a source router.
func Load(path string) (*api.Request, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to read topology %s: %w", path, err)
	}
	return fromKoanf(k), nil
}

// Parse decodes an in-memory topology document
func Parse(data []byte, format Format) (*api.Request, error) {
	parser, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(bytesProvider(data), parser); err != nil {
		return nil, fmt.Errorf("failed to parse %s topology: %w", format, err)
	}
	return fromKoanf(k), nil
}

// fromKoanf maps loaded keys onto a request. Edges stays nil when the key is
// absent or null so that validation can tell it apart from an empty list.
func fromKoanf(k *koanf.Koanf) *api.Request {
	req := &api.Request{Source: k.String("source")}
	if k.Get("edges") == nil {
		return req
	}

	req.Edges = make([]api.EdgeInput, 0)
	for _, e := range k.Slices("edges") {
		req.Edges = append(req.Edges, api.EdgeInput{
			From:   e.String("from"),
			To:     e.String("to"),
			Weight: api.Weight(routing.ParseWeight(e.Get("weight"))),
		})
	}
	return req
}

// bytesProvider feeds raw document bytes to a koanf parser
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) {
	return b, nil
}

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytes provider requires a parser")
}
