// internal/source/file.go
//
// Structured file provider (YAML or JSON, chosen by extension).
//
// Notes
// -----
//   - A missing optional file yields an empty mapping, not an error.
//   - A missing required file, an unreadable file, or a parse failure are
//     all SourceUnavailable.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

type fileSource struct {
	path     string
	optional bool
}

// File returns a provider reading path.  When optional is true a missing
// file contributes nothing.
func File(path string, optional bool) Provider {
	return &fileSource{path: path, optional: optional}
}

func (f *fileSource) Name() string { return "file:" + f.path }

func (f *fileSource) ReadAll(context.Context) (map[string]string, error) {
	if _, err := os.Stat(f.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && f.optional {
			return map[string]string{}, nil
		}
		return nil, Unavailable(f.Name(), err)
	}

	parser, err := parserFor(f.path)
	if err != nil {
		return nil, Unavailable(f.Name(), err)
	}

	kv, err := loadFlat(file.Provider(f.path), parser)
	if err != nil {
		return nil, Unavailable(f.Name(), err)
	}
	return kv, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported settings file extension %q", filepath.Ext(path))
	}
}
