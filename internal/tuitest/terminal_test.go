package tuitest

import (
	"bytes"
	"testing"
)

func TestProbeAnswererRepliesInOrder(t *testing.T) {
	var out bytes.Buffer
	p := newProbeAnswerer(&out)
	p.Feed([]byte("hello\x1b]11;?\x07world\x1b["))
	p.Feed([]byte("6n"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("unexpected replies %q", out.String())
	}
}

func TestProbeAnswererBoundsPending(t *testing.T) {
	p := newProbeAnswerer(&bytes.Buffer{})
	p.Feed(bytes.Repeat([]byte("x"), pendingLimit+10))
	if len(p.pending) != pendingKeep {
		t.Fatalf("pending should shrink to %d bytes, got %d", pendingKeep, len(p.pending))
	}
}
