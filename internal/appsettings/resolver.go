package appsettings

import (
	"context"
	"fmt"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/event"
	"github.com/yanizio/forecast/internal/resolver"
	"github.com/yanizio/forecast/internal/source"
	"github.com/yanizio/forecast/internal/validation"
)

// Resolver is the resolver type consumers depend on.
type Resolver = resolver.Resolver[AppSettings]

// Resolved is one resolved AppSettings value.
type Resolved = resolver.Resolved[AppSettings]

// HostDefaults are the values the hosting layer injects before any other
// source, so files and the environment can still override them.
func HostDefaults() source.Provider {
	return source.Memory("host", map[string]string{
		"AppSettings:Host:AppName":        "forecast",
		"AppSettings:Host:AppVersion":     "1.0",
		"AppSettings:Host:AppDescription": "Weather forecast demo service.",
	})
}

// NewResolver wires the AppSettings pipeline.  Under resolver.Singleton the
// first cycle runs here.  A nil checker is rejected with
// validation.ErrNilChecker.
func NewResolver(ctx context.Context, policy resolver.Policy, checker allowlist.Checker,
	rep event.Reporter, providers ...source.Provider) (*Resolver, error) {
	if checker == nil {
		return nil, fmt.Errorf("appsettings: %w", validation.ErrNilChecker)
	}
	return resolver.New(ctx, resolver.Options[AppSettings]{
		Policy:    policy,
		Section:   SectionName,
		Providers: providers,
		Pipeline:  Pipeline(),
		Chain:     Chain(checker),
		Reporter:  rep,
	})
}
