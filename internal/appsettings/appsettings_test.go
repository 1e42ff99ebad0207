// internal/appsettings/appsettings_test.go
//
// Acceptance tests for the AppSettings pipeline.
//
// Context
// -------
// End to end runs through the real resolver (merge, bind, post-process,
// validate), plus a layered file and environment run.
//
//   • missing SmtpIp                          → MissingRequiredField
//   • SmtpIp 999.1.1.1                        → declarative rejection
//   • port 25 without "Admin" in SomeKey      → cross-field rejection
//   • suffix step applied twice               → "baseSS"
//   • allow list {127.0.0.1}, SmtpIp 10.0.0.5 → external rejection
//
// Run: go test ./internal/appsettings -v

package appsettings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/binder"
	"github.com/yanizio/forecast/internal/event"
	"github.com/yanizio/forecast/internal/resolver"
	"github.com/yanizio/forecast/internal/source"
	"github.com/yanizio/forecast/internal/validation"
)

func resolve(t *testing.T, checker allowlist.Checker, kv map[string]string) (Resolved, error) {
	t.Helper()
	r, err := NewResolver(context.Background(), resolver.Snapshot, checker, nil,
		source.Memory("test", kv))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r.Current(context.Background())
}

func TestResolve_MissingSmtpIpIsBindError(t *testing.T) {
	_, err := resolve(t, allowlist.NewStatic(allowlist.DefaultAddresses...),
		map[string]string{"AppSettings:SomeKey": "x"})

	var be *binder.BindError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BindError", err)
	}
	if be.Kind != binder.MissingRequiredField || be.Path != "SmtpIp" {
		t.Fatalf("got %s at %q, want MissingRequiredField at SmtpIp", be.Kind, be.Path)
	}
}

func TestResolve_DottedQuadRejectsBadOctet(t *testing.T) {
	res, err := resolve(t, allowlist.NewStatic(allowlist.DefaultAddresses...), map[string]string{
		"AppSettings:SomeKey":  "Admin",
		"AppSettings:SmtpIp":   "999.1.1.1",
		"AppSettings:SmtpPort": "25",
	})

	var ve validation.Errors
	if !errors.As(err, &ve) || res.Status() != resolver.StatusRejected {
		t.Fatalf("err = %v, status = %s", err, res.Status())
	}
	if !ve.Has(event.StageDeclarative, "SmtpIp") {
		t.Fatalf("no declarative SmtpIp error in %v", ve)
	}
}

func TestResolve_AdminRequiredOnReservedPort(t *testing.T) {
	checker := allowlist.NewStatic(allowlist.DefaultAddresses...)
	kv := map[string]string{
		"AppSettings:SomeKey":  "guest",
		"AppSettings:SmtpIp":   "127.0.0.1",
		"AppSettings:SmtpPort": "25",
	}

	_, err := resolve(t, checker, kv)
	var ve validation.Errors
	if !errors.As(err, &ve) || !ve.Has(event.StageCrossField, "SomeKey") {
		t.Fatalf("err = %v, want cross-field SomeKey error", err)
	}

	kv["AppSettings:SomeKey"] = "Admin"
	res, err := resolve(t, checker, kv)
	if err != nil {
		t.Fatalf("Admin key rejected: %v", err)
	}
	if !res.Valid() || res.Settings().SomeKey != "Admin"+Suffix {
		t.Fatalf("resolved = %+v", res.Settings())
	}
}

func TestResolve_LocalhostNeedsReservedPort(t *testing.T) {
	_, err := resolve(t, allowlist.NewStatic(allowlist.DefaultAddresses...), map[string]string{
		"AppSettings:SomeKey":  "Admin",
		"AppSettings:SmtpIp":   "127.0.0.1",
		"AppSettings:SmtpPort": "2525",
	})
	var ve validation.Errors
	if !errors.As(err, &ve) || !ve.Has(event.StageCrossField, "SmtpPort") {
		t.Fatalf("err = %v, want cross-field SmtpPort error", err)
	}
}

func TestPipeline_SuffixStepTwice(t *testing.T) {
	p := Pipeline()
	once := p.Apply(AppSettings{SomeKey: "base"}, nil)
	if once.SomeKey != "base"+Suffix {
		t.Fatalf("once = %q", once.SomeKey)
	}

	step := AppendSuffix("S")
	got := step.Apply(step.Apply(AppSettings{SomeKey: "base"}))
	if got.SomeKey != "baseSS" {
		t.Fatalf("twice = %q, want baseSS", got.SomeKey)
	}
}

func TestResolve_ExternalAllowList(t *testing.T) {
	checker := allowlist.NewStatic("127.0.0.1")

	_, err := resolve(t, checker, map[string]string{
		"AppSettings:SomeKey":  "Admin",
		"AppSettings:SmtpIp":   "10.0.0.5",
		"AppSettings:SmtpPort": "587",
	})
	var ve validation.Errors
	if !errors.As(err, &ve) || !ve.Has(event.StageExternal, "SmtpIp") {
		t.Fatalf("err = %v, want external SmtpIp error", err)
	}

	res, err := resolve(t, checker, map[string]string{
		"AppSettings:SomeKey":  "Admin",
		"AppSettings:SmtpIp":   "127.0.0.1",
		"AppSettings:SmtpPort": "25",
	})
	if err != nil || !res.Valid() {
		t.Fatalf("127.0.0.1 rejected: %v", err)
	}
}

func TestNoShortCircuit_IndependentFailures(t *testing.T) {
	_, err := resolve(t, allowlist.NewStatic(allowlist.DefaultAddresses...), map[string]string{
		"AppSettings:SomeKey":  "Admin",
		"AppSettings:SmtpIp":   "1.2.3",
		"AppSettings:SmtpPort": "0",
	})
	var ve validation.Errors
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if !ve.Has(event.StageDeclarative, "SmtpIp") || !ve.Has(event.StageDeclarative, "SmtpPort") {
		t.Fatalf("both failures expected, got %v", ve)
	}
}

func TestValidInputRoundTrips(t *testing.T) {
	res, err := resolve(t, allowlist.NewStatic(allowlist.DefaultAddresses...), map[string]string{
		"AppSettings:SomeKey":         "AdminKey",
		"AppSettings:SmtpIp":          "192.168.0.1",
		"AppSettings:SmtpPort":        "25",
		"AppSettings:Host:AppName":    "demo",
		"AppSettings:Host:AppVersion": "2.1",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := AppSettings{
		SomeKey:  "AdminKey" + Suffix,
		SmtpIp:   "192.168.0.1",
		SmtpPort: 25,
		Host:     HostInfo{AppName: "demo", AppVersion: "2.1"},
	}
	if res.Settings() != want {
		t.Fatalf("settings = %+v\nwant       %+v", res.Settings(), want)
	}
	if res.Settings().ConnectionString() != "192.168.0.1:25" {
		t.Fatalf("ConnectionString = %q", res.Settings().ConnectionString())
	}
}

func TestLayeredFileEnvAndHostDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appsettings.json")
	body := `{"AppSettings": {"SomeKey": "Admin", "SmtpIp": "127.0.0.1", "SmtpPort": 2525}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FCAPP_APPSETTINGS__SMTPPORT", "25")

	r, err := NewResolver(context.Background(), resolver.Singleton,
		allowlist.NewStatic(allowlist.DefaultAddresses...), nil,
		HostDefaults(),
		source.File(filepath.Join(dir, "missing.json"), true),
		source.File(path, false),
		source.Env("FCAPP_"),
	)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	res, _ := r.Current(context.Background())
	s := res.Settings()
	if s.SmtpPort != 25 || s.Host.AppName != "forecast" || s.SomeKey != "Admin"+Suffix {
		t.Fatalf("settings = %+v", s)
	}
}

func TestSingletonFailsFastOnMissingRequiredFile(t *testing.T) {
	_, err := NewResolver(context.Background(), resolver.Singleton,
		allowlist.NewStatic(), nil,
		source.File(filepath.Join(t.TempDir(), "appsettings.yaml"), false))
	if !errors.Is(err, source.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestNewResolver_RejectsNilChecker(t *testing.T) {
	_, err := NewResolver(context.Background(), resolver.Snapshot, nil, nil,
		source.Memory("test", map[string]string{"AppSettings:SomeKey": "x"}))
	if !errors.Is(err, validation.ErrNilChecker) {
		t.Fatalf("err = %v, want ErrNilChecker", err)
	}
}
