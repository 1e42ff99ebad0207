// Package event defines the structured record emitted by the resolution
// pipeline for every post-process mutation and every validation failure.
// The sink is whoever implements Reporter; cmd/web wires the zap logger.
package event

// Stage names the pipeline step that produced an Event.
type Stage string

const (
	StageSource      Stage = "source"
	StageBind        Stage = "bind"
	StagePostProcess Stage = "postprocess"
	StageDeclarative Stage = "declarative"
	StageCrossField  Stage = "cross-field"
	StageExternal    Stage = "external"
)

// Event is one structured observation.
type Event struct {
	Stage   Stage
	Field   string
	Message string
}

// Reporter receives events.  Implementations must be safe for concurrent
// use because snapshot resolutions may run in parallel.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a plain function.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})
