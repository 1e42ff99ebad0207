// internal/source/koanf.go
//
// Shared helpers for providers backed by koanf.
package source

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	koanf "github.com/knadh/koanf/v2"
)

// loadFlat runs one koanf provider/parser pair and flattens the resulting
// tree into dotted string keys.
func loadFlat(p koanf.Provider, parser koanf.Parser) (map[string]string, error) {
	k := koanf.New(Delim)
	if err := k.Load(p, parser); err != nil {
		return nil, err
	}
	return flatten(k), nil
}

func flatten(k *koanf.Koanf) map[string]string {
	out := make(map[string]string, len(k.Keys()))
	for _, key := range k.Keys() {
		out[key] = stringify(k.Get(key))
	}
	return out
}

// stringify renders a leaf.  Lists become comma-joined strings so the binder
// can split them back into []string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringify(e))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
