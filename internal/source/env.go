package source

import (
	"context"
	"strings"

	"github.com/knadh/koanf/providers/env"
)

type envSource struct {
	prefix string
}

// Env returns a provider over environment variables that start with prefix.
// The prefix is stripped and Merge maps "__" onto the dotted delimiter, so
// FORECAST_APPSETTINGS__SMTPPORT becomes appsettings.smtpport.
//
// The koanf provider runs without a delimiter.  Unflattening would let
// APPSETTINGS__HOST and APPSETTINGS__HOST__APPNAME overwrite each other.
func Env(prefix string) Provider {
	return &envSource{prefix: prefix}
}

func (e *envSource) Name() string { return "env:" + e.prefix }

func (e *envSource) ReadAll(context.Context) (map[string]string, error) {
	p := env.Provider(e.prefix, "", func(s string) string {
		return strings.TrimPrefix(s, e.prefix)
	})
	raw, err := p.Read()
	if err != nil {
		return nil, Unavailable(e.Name(), err)
	}
	kv := make(map[string]string, len(raw))
	for k, v := range raw {
		kv[k] = stringify(v)
	}
	return kv, nil
}
