package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"sentinel/core"
)

// severityColors maps severities to the console palette.
var severityColors = map[core.Severity]*color.Color{
	core.SeverityInfo:     color.New(color.FgWhite),
	core.SeverityLow:      color.New(color.FgBlue),
	core.SeverityMedium:   color.New(color.FgYellow),
	core.SeverityHigh:     color.New(color.FgRed),
	core.SeverityCritical: color.New(color.FgRed, color.Bold),
}

// Stdout prints events to the console, colored by severity. Used as the
// local-dev fallback vendor and as the shared client's default delivery
// path.
type Stdout struct {
	out io.Writer
}

// NewStdout creates a console leaf sink.
func NewStdout() *Stdout {
	return &Stdout{out: os.Stdout}
}

// NewStdoutWriter creates a console sink writing to w (for tests).
func NewStdoutWriter(w io.Writer) *Stdout {
	return &Stdout{out: w}
}

// Deliver prints the compact wire form of the event.
func (s *Stdout) Deliver(_ context.Context, event *core.Event) (Outcome, error) {
	start := time.Now()
	body, err := encodeEvent(event)
	if err != nil {
		return OutcomeDelivered, err
	}

	c, ok := severityColors[event.Severity]
	if !ok {
		c = color.New(color.FgWhite)
	}
	_, err = fmt.Fprintf(s.out, "%s %s\n", c.Sprintf("[%s]", event.Severity), body)
	observeDelivery("stdout", start, err)
	if err != nil {
		return OutcomeDelivered, fmt.Errorf("failed to write event: %w", err)
	}
	return OutcomeDelivered, nil
}
