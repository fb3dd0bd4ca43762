package main

import (
	"fmt"
	"io"

	"github.com/campusmarket/market-client/internal/chat"
)

// termDisplay renders chat output to the terminal while mirroring every
// message into a Transcript, so the log can be re-rendered after leaving and
// re-entering chat mode. The Session serializes all calls.
type termDisplay struct {
	out io.Writer
	log *chat.Transcript
}

func newTermDisplay(out io.Writer) *termDisplay {
	return &termDisplay{out: out, log: chat.NewTranscript()}
}

func (d *termDisplay) Clear() {
	d.log.Clear()
	fmt.Fprintln(d.out, "--- chat ---")
}

func (d *termDisplay) Append(sender, text string, self bool) {
	d.log.Append(sender, text, self)
	d.print(sender, text, self)
}

func (d *termDisplay) ShowReauth() {
	d.log.ShowReauth()
	fmt.Fprintln(d.out, "session expired, please log in again")
}

// Replay re-renders the recorded transcript, for returning to a room whose
// connection stayed open.
func (d *termDisplay) Replay() {
	fmt.Fprintln(d.out, "--- chat ---")
	if d.log.NeedsReauth() {
		fmt.Fprintln(d.out, "session expired, please log in again")
		return
	}
	for _, line := range d.log.Lines() {
		d.print(line.Sender, line.Text, line.Self)
	}
}

func (d *termDisplay) print(sender, text string, self bool) {
	if self {
		fmt.Fprintf(d.out, "  you: %s\n", text)
		return
	}
	fmt.Fprintf(d.out, "  %s: %s\n", sender, text)
}
