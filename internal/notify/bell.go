// Package notify provides the notification sink for phase completions.
// The original app played a sound file and fell back to a system beep;
// in a terminal the equivalent is the BEL character, and any failure
// degrades to silence.
package notify

import (
	"io"
	"os"

	"github.com/routineapp/routine/pomodoro"
)

// BellSink rings the terminal bell on every phase completion.
type BellSink struct {
	w io.Writer
}

// NewBellSink creates a sink writing to w; nil defaults to stderr.
func NewBellSink(w io.Writer) *BellSink {
	if w == nil {
		w = os.Stderr
	}
	return &BellSink{w: w}
}

// Notify rings the bell. Write errors are swallowed: notification
// failures must never reach the timer loop.
func (s *BellSink) Notify(pomodoro.PhaseCompleted) {
	_, _ = s.w.Write([]byte("\a"))
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) Notify(pomodoro.PhaseCompleted) {}
