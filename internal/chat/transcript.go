package chat

import "sync"

// Line is one rendered transcript entry.
type Line struct {
	Sender string
	Text   string
	Self   bool
}

// Transcript is an in-memory Display that records rendered lines in order.
// It backs the terminal renderer and test assertions. Unlike the Display
// contract requires, it carries its own lock, so reads are safe while a
// Session is writing.
type Transcript struct {
	mu     sync.Mutex
	lines  []Line
	reauth bool
}

// NewTranscript creates an empty Transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Clear empties the transcript and resets the re-authenticate notice.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.lines = t.lines[:0]
	t.reauth = false
	t.mu.Unlock()
}

// Append records one message.
func (t *Transcript) Append(sender, text string, self bool) {
	t.mu.Lock()
	t.lines = append(t.lines, Line{Sender: sender, Text: text, Self: self})
	t.mu.Unlock()
}

// ShowReauth replaces the transcript with the re-authenticate notice.
func (t *Transcript) ShowReauth() {
	t.mu.Lock()
	t.lines = t.lines[:0]
	t.reauth = true
	t.mu.Unlock()
}

// Lines returns a snapshot of the rendered lines, oldest first.
func (t *Transcript) Lines() []Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// NeedsReauth reports whether the re-authenticate notice is showing.
func (t *Transcript) NeedsReauth() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reauth
}
