package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/csheth/studydesk/internal/panel"
	"github.com/csheth/studydesk/internal/tuitest"
)

func TestInteractiveSidebarNavigation(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary in a pty")
	}
	if runtime.GOOS == "windows" {
		t.Skip("pty harness needs a unix terminal")
	}

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	state := t.TempDir()

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     state,
		Env: []string{
			"XDG_CONFIG_HOME=" + state,
			"STUDYDESK_SERVER_BASE_URL=http://127.0.0.1:9",
			"STUDYDESK_HISTORY_PATH=" + filepath.Join(state, "history.json"),
			"STUDYDESK_CACHE_DIR=" + filepath.Join(state, "cache"),
			"STUDYDESK_LOG_PATH=" + filepath.Join(state, "studydesk.log"),
			"STUDYDESK_LLM_PROVIDER=none",
			"STUDYDESK_UI_STYLE=notty",
			"STUDYDESK_UI_MOUSE=false",
			"OTEL_EXPORTER_OTLP_ENDPOINT=",
		},
		Width:  120,
		Height: 32,
		Steps: []tuitest.Step{
			{WaitFor: "Getting started", Input: tuitest.KeyDown},
			{Input: tuitest.KeyDown},
			{Input: tuitest.KeyEnter},
			{WaitFor: panel.YouTube.Button(), Input: tuitest.KeyCtrlC},
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}
	if _, ok := rec.FinalFrame(); !ok {
		t.Fatalf("no frames captured")
	}
	for _, want := range []string{"StudyDesk", "Getting started", panel.YouTube.Title(), panel.YouTube.Button()} {
		if !rec.Contains(want) {
			t.Fatalf("no frame shows %q", want)
		}
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "studydesk-integration")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
