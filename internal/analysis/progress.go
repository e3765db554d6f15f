package analysis

import "time"

// Stage describes one pass of an analysis run.
type Stage string

const (
	// StageTrace validates trace.json.
	StageTrace Stage = "trace"
	// StageTypes validates types.json.
	StageTypes Stage = "types"
	// StageGraph builds the relation graph.
	StageGraph Stage = "graph"
	// StageLimits classifies depth-limit events.
	StageLimits Stage = "limits"
	// StageHotspots aggregates file check time.
	StageHotspots Stage = "hotspots"
	// StageSpans pairs duration records.
	StageSpans Stage = "spans"
	// StageFindings collects diagnostics from the derived views.
	StageFindings Stage = "findings"
)

// Stages returns every stage in the order a run starts them.
func Stages() []Stage {
	return []Stage{StageTrace, StageTypes, StageGraph, StageLimits, StageHotspots, StageSpans, StageFindings}
}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the stage is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the stage is done.
	StatusDone Status = "done"
	// StatusError indicates the stage failed.
	StatusError Status = "error"
)

// Event reports progress for a stage.
type Event struct {
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }
