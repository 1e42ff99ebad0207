package validation

import (
	"strings"
	"testing"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/event"
)

type relay struct {
	Name string `settings:"Name" validate:"required,max=8"`
	IP   string `settings:"Ip" validate:"required,dottedquad"`
	Port int    `settings:"Port" validate:"min=1,max=65535"`
	Sub  sub    `settings:"Sub"`
}

type sub struct {
	Label string `settings:"Label" validate:"omitempty,min=2"`
}

func portRule() Rule[relay] {
	return Rule[relay]{Name: "localhost-port", Check: func(r relay) []FieldError {
		if r.IP == "127.0.0.1" && r.Port != 25 {
			return []FieldError{{Field: "Port", Message: "localhost relay must use port 25"}}
		}
		return nil
	}}
}

func TestDeclarative_Paths(t *testing.T) {
	errs := Declarative(relay{Name: "far-too-long", IP: "999.1.1.1", Port: 0, Sub: sub{Label: "x"}})

	for _, want := range []string{"Name", "Ip", "Port", "Sub.Label"} {
		if !errs.Has(event.StageDeclarative, want) {
			t.Errorf("missing declarative error for %s in %v", want, errs.Fields())
		}
	}
}

func TestDottedQuad(t *testing.T) {
	good := []string{"127.0.0.1", "0.0.0.0", "255.255.255.255", "192.168.0.1"}
	bad := []string{"999.1.1.1", "1.2.3", "1.2.3.4.5", "01.2.3.4", "a.b.c.d", "256.0.0.1", ""}
	for _, s := range good {
		if !IsDottedQuad(s) {
			t.Errorf("%q rejected", s)
		}
	}
	for _, s := range bad {
		if IsDottedQuad(s) {
			t.Errorf("%q accepted", s)
		}
	}
}

func TestChain_NoShortCircuitAndStageOrder(t *testing.T) {
	checker := allowlist.NewStatic("127.0.0.1")
	c := NewChain[relay]().
		WithCrossField(portRule()).
		WithExternal(AllowListed("Ip", func(r relay) string { return r.IP }, checker))

	// Declarative failure on Name, cross-field failure on Port.
	errs := c.Validate(relay{Name: "", IP: "127.0.0.1", Port: 2525}, nil)
	if !errs.Has(event.StageDeclarative, "Name") || !errs.Has(event.StageCrossField, "Port") {
		t.Fatalf("errors = %v", errs)
	}

	// Failures in all three stages appear in stage order.
	errs = c.Validate(relay{Name: "", IP: "10.0.0.5", Port: 0}, nil)
	rank := map[event.Stage]int{event.StageDeclarative: 0, event.StageCrossField: 1, event.StageExternal: 2}
	for i := 1; i < len(errs); i++ {
		if rank[errs[i].Stage] < rank[errs[i-1].Stage] {
			t.Fatalf("stage order broken: %v", errs)
		}
	}
	if !errs.Has(event.StageExternal, "Ip") {
		t.Fatalf("external allow-list error missing: %v", errs)
	}
}

func TestChain_AcceptsAnyChecker(t *testing.T) {
	calls := 0
	checker := allowlist.CheckerFunc(func(v string) bool { calls++; return strings.HasPrefix(v, "10.") })
	c := NewChain[relay]().WithExternal(AllowListed("Ip", func(r relay) string { return r.IP }, checker))

	if errs := c.Validate(relay{Name: "ok", IP: "10.0.0.5", Port: 25}, nil); len(errs) != 0 {
		t.Fatalf("errors = %v", errs)
	}
	if calls != 1 {
		t.Fatalf("checker calls = %d, want 1", calls)
	}
}

func TestAllowListed_NilCheckerRejects(t *testing.T) {
	c := NewChain[relay]().WithExternal(AllowListed("Ip", func(r relay) string { return r.IP }, nil))

	errs := c.Validate(relay{Name: "ok", IP: "127.0.0.1", Port: 25}, nil)
	if len(errs) != 1 || errs[0].Field != "Ip" || errs[0].Stage != event.StageExternal {
		t.Fatalf("errors = %v, want one external rejection on Ip", errs)
	}
}

func TestChain_ReportsEveryError(t *testing.T) {
	var n int
	r := event.ReporterFunc(func(event.Event) { n++ })
	errs := NewChain[relay]().WithCrossField(portRule()).Validate(relay{IP: "127.0.0.1", Port: 80}, r)
	if n != len(errs) || n == 0 {
		t.Fatalf("reported %d events for %d errors", n, len(errs))
	}
}

func TestErrors_Itemized(t *testing.T) {
	errs := Errors{
		{Stage: event.StageDeclarative, Field: "SmtpIp", Message: "invalid IP address format"},
		{Stage: event.StageExternal, Field: "SmtpIp", Message: "address 10.0.0.5 is not allowed"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") || strings.Count(msg, "\n  - ") != 2 {
		t.Fatalf("message = %q", msg)
	}
}
