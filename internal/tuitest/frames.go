package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one screen render, split on erase-display sequences.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

// Lines returns the unstyled rows of the frame.
func (f Frame) Lines() []string {
	if f.Plain == "" {
		return nil
	}
	return strings.Split(f.Plain, "\n")
}

var (
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence  = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence  = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
	shiftChars   = strings.NewReplacer("\x0e", "", "\x0f", "")
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, chunk := range eraseDisplay.Split(stream, -1) {
		chunk = strings.TrimPrefix(strings.Trim(chunk, "\x00"), "\x1b[H")
		plain := stripANSI(chunk)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: chunk, Plain: trimLines(plain)})
	}
	if len(frames) == 0 && stream != "" {
		frames = []Frame{{ANSI: stream, Plain: trimLines(stripANSI(stream))}}
	}
	return frames
}

// FinalFrame returns the last frame, or false when nothing was drawn.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Contains reports whether any frame shows text.
func (r *Recording) Contains(text string) bool {
	_, ok := r.FirstWith(text)
	return ok
}

// FirstWith returns the earliest frame showing text.
func (r *Recording) FirstWith(text string) (Frame, bool) {
	if r == nil {
		return Frame{}, false
	}
	for _, f := range r.Frames {
		if strings.Contains(f.Plain, text) {
			return f, true
		}
	}
	return Frame{}, false
}

func stripANSI(s string) string {
	s = oscSequence.ReplaceAllString(s, "")
	s = csiSequence.ReplaceAllString(s, "")
	return shiftChars.Replace(s)
}

// trimLines drops trailing spaces on every row and trailing blank rows.
func trimLines(s string) string {
	rows := strings.Split(s, "\n")
	for i, row := range rows {
		rows[i] = strings.TrimRight(row, " ")
	}
	end := len(rows)
	for end > 0 && strings.TrimSpace(rows[end-1]) == "" {
		end--
	}
	return strings.Join(rows[:end], "\n")
}
