package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// jobKind names the background work a panel or shortcut starts.
type jobKind string

const (
	jobKindSearch   jobKind = "search"
	jobKindPDF      jobKind = "pdf"
	jobKindTutor    jobKind = "tutor"
	jobKindQuiz     jobKind = "quiz"
	jobKindReadFile jobKind = "readfile"
	jobKindSave     jobKind = "save"
)

type jobStatus string

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID        string
	Kind      jobKind
	Status    jobStatus
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}

func (s jobSnapshot) finished(err error) jobSnapshot {
	s.Duration = time.Since(s.StartedAt)
	s.Status = jobStatusSucceeded
	if err != nil {
		s.Status = jobStatusFailed
		s.Err = err
	}
	return s
}

// jobSignalMsg announces a job that has started.
type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobResultEnvelope carries a finished job and whatever its runner produced.
type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	seq    atomic.Int64
	logger *zap.Logger
}

func newJobBus(logger *zap.Logger) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{logger: logger.Named("jobs")}
}

// Start runs runner under ctx. The program receives a jobSignalMsg before the
// runner starts and a jobResultEnvelope when it returns.
func (b *jobBus) Start(ctx context.Context, kind jobKind, runner jobRunner) tea.Cmd {
	snap := jobSnapshot{
		ID:        fmt.Sprintf("%s-%d", kind, b.seq.Add(1)),
		Kind:      kind,
		Status:    jobStatusRunning,
		StartedAt: time.Now(),
	}
	announce := func() tea.Msg { return jobSignalMsg{Snapshot: snap} }
	run := func() tea.Msg {
		payload, err := runner(ctx)
		done := snap.finished(err)
		b.logger.Info("job finished",
			zap.String("id", done.ID),
			zap.String("status", string(done.Status)),
			zap.Duration("duration", done.Duration),
			zap.Error(err),
		)
		return jobResultEnvelope{Snapshot: done, Payload: payload}
	}
	return tea.Sequence(announce, run)
}
