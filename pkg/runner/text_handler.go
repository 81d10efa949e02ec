package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// TextHandler writes a human-readable report.
type TextHandler struct {
	Writer io.Writer

	// ShowState prints the final state as YAML in Finish.
	ShowState bool

	out *termenv.Output
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithColorProfile forces a color profile instead of detecting one from the writer.
func WithColorProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.out = termenv.NewOutput(h.Writer, termenv.WithProfile(p))
	}
}

// WithShowState toggles the final state dump.
func WithShowState(show bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.ShowState = show
	}
}

// NewTextHandler creates a handler writing to w (stdout when nil).
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w, ShowState: true}
	for _, opt := range opts {
		opt(h)
	}
	if h.out == nil {
		h.out = termenv.NewOutput(w)
	}
	return h
}

func (h *TextHandler) style(s, color string) termenv.Style {
	return h.out.String(s).Foreground(h.out.Color(color))
}

func (h *TextHandler) Start(info RunInfo) error {
	_, err := fmt.Fprintf(h.Writer, "%s %s %s\n",
		h.style("▶", "#818cf8").Bold(),
		h.style(info.Scenario, "#a78bfa").Bold(),
		h.style("("+info.ID+")", "#6b7280"),
	)
	return err
}

func (h *TextHandler) Notification(n Notification) error {
	changed := strings.Join(n.Changed, ", ")
	if changed == "" {
		changed = "*"
	}
	line := fmt.Sprintf("    ↳ %s [pass %d] %s", n.Subscriber, n.Pass, changed)
	if n.Reactions > 0 {
		line += fmt.Sprintf(" (+%d reactions)", n.Reactions)
	}
	_, err := fmt.Fprintln(h.Writer, h.style(line, "#6b7280"))
	return err
}

func (h *TextHandler) StepDone(res StepResult) error {
	mark := h.style("✔", "#22c55e")
	if res.Failed() {
		mark = h.style("✘", "#ef4444")
	}
	if _, err := fmt.Fprintf(h.Writer, "  %s %s: %d changes, %d passes, %d notifications\n",
		mark, res.Name, len(res.Changes), res.Passes, res.Notifications); err != nil {
		return err
	}
	if res.Error != "" {
		if _, err := fmt.Fprintf(h.Writer, "    %s\n", h.style("error: "+res.Error, "#ef4444")); err != nil {
			return err
		}
	}
	for _, f := range res.Faults {
		if _, err := fmt.Fprintf(h.Writer, "    %s\n", h.style(f.Subscriber+": "+f.Error, "#f59e0b")); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) Finish(sum Summary) error {
	status := h.style(fmt.Sprintf("%d steps, %d failed", sum.Steps, sum.Failed), "#22c55e")
	if sum.Failed > 0 {
		status = h.style(fmt.Sprintf("%d steps, %d failed", sum.Steps, sum.Failed), "#ef4444")
	}
	if _, err := fmt.Fprintf(h.Writer, "%s in %s\n", status, sum.Duration.Round(time.Microsecond)); err != nil {
		return err
	}
	if !h.ShowState {
		return nil
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sum.State); err != nil {
		return fmt.Errorf("failed to render state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to render state: %w", err)
	}
	_, err := fmt.Fprintf(h.Writer, "%s\n%s", h.style("state:", "#a78bfa").Bold(), indent(buf.String(), "  "))
	return err
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(line)
	}
	return b.String()
}
