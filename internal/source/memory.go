package source

import (
	"context"
	"maps"
)

type memory struct {
	name string
	data map[string]string
}

// Memory returns an in-memory provider, typically used for defaults or for
// values injected by the host at startup.  The map is copied and kept flat;
// keys are normalised by Merge like every other provider's.
func Memory(name string, kv map[string]string) Provider {
	return &memory{name: name, data: maps.Clone(kv)}
}

func (m *memory) Name() string { return "memory:" + m.name }

func (m *memory) ReadAll(context.Context) (map[string]string, error) {
	return maps.Clone(m.data), nil
}
