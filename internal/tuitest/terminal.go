package tuitest

import (
	"bytes"
	"io"
)

// queryReplies answers the probes Bubble Tea and termenv send on startup:
// cursor position and the OSC 10/11 colour queries in both terminators.
var queryReplies = []struct {
	query, reply string
}{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

const (
	pendingLimit = 256
	pendingKeep  = 64
)

// probeAnswerer plays the terminal side of the query protocol so programs that
// wait for replies do not stall inside the pty.
type probeAnswerer struct {
	out     io.Writer
	pending []byte
}

func newProbeAnswerer(out io.Writer) *probeAnswerer {
	return &probeAnswerer{out: out, pending: make([]byte, 0, pendingLimit)}
}

func (p *probeAnswerer) Feed(chunk []byte) {
	p.pending = append(p.pending, chunk...)
	for p.answerFirst() {
	}
	if len(p.pending) > pendingLimit {
		// a probe can straddle two reads
		p.pending = p.pending[len(p.pending)-pendingKeep:]
	}
}

// answerFirst replies to the earliest probe in the pending bytes and reports
// whether it found one.
func (p *probeAnswerer) answerFirst() bool {
	first, at := -1, -1
	for i, qr := range queryReplies {
		idx := bytes.Index(p.pending, []byte(qr.query))
		if idx >= 0 && (at < 0 || idx < at) {
			first, at = i, idx
		}
	}
	if first < 0 {
		return false
	}
	qr := queryReplies[first]
	p.pending = p.pending[at+len(qr.query):]
	_, _ = io.WriteString(p.out, qr.reply)
	return true
}
