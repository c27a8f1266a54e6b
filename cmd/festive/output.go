package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"festive/internal/mediajob"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// progressPrinter echoes controller labels to a terminal, one line per label
// change, the way the button label changes in the web surface.
type progressPrinter struct {
	out      io.Writer
	colorize bool

	mu   sync.Mutex
	last string
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *progressPrinter) OnStateChange(event mediajob.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.Label == "" || event.Label == p.last {
		return
	}
	p.last = event.Label
	fmt.Fprintln(p.out, renderStatusLine("Status", kindForState(event.State), event.Label, p.colorize))
}

func kindForState(state mediajob.State) statusKind {
	switch state {
	case mediajob.StateCompleted, mediajob.StateReady:
		return statusOK
	case mediajob.StateFailed:
		return statusError
	case mediajob.StateTimedOut:
		return statusWarn
	default:
		return statusInfo
	}
}
