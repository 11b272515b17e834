// Package render holds the non-interactive display surfaces for state
// snapshots: HTML page regions and a plain-text stream.
package render

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/neubot/nbwatch/internal/logger"
	"github.com/neubot/nbwatch/internal/state"
)

// Messages shown in the daemon region.
const (
	RunningMessage = "Neubot is currently running."
	IdleMessage    = "Neubot is currently idle."
)

// Regions is the content of the three page regions after a render pass.
type Regions struct {
	Daemon string `json:"daemon"`
	State  string `json:"state"`
	Detail string `json:"detail"`
}

// HTML renders snapshots into the page regions #daemon, #state and
// #detail. When a sink is set, the regions are written to it after every
// render call.
type HTML struct {
	mu      sync.Mutex
	regions Regions
	sink    io.Writer
	log     logger.Logger
}

// HTMLOption configures an HTML renderer.
type HTMLOption func(*HTML)

// WithSink writes the regions to w after every render call.
func WithSink(w io.Writer) HTMLOption {
	return func(h *HTML) {
		h.sink = w
	}
}

// WithHTMLLogger sets the logger used for sink write failures.
func WithHTMLLogger(l logger.Logger) HTMLOption {
	return func(h *HTML) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHTML creates an HTML renderer with empty regions.
func NewHTML(opts ...HTMLOption) *HTML {
	h := &HTML{log: logger.Noop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Regions returns a copy of the current region content.
func (h *HTML) Regions() Regions {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.regions
}

// RenderDaemonState fills #daemon and #state. An idle daemon clears the
// activity list.
func (h *HTML) RenderDaemonState(active bool, activities []state.Activity) {
	h.mu.Lock()
	h.regions.Daemon, h.regions.State = DaemonHTML(active, activities)
	h.mu.Unlock()
	h.flush()
}

// RenderTestDetail fills #detail.
func (h *HTML) RenderTestDetail(test *state.Test, active bool) {
	if test == nil {
		return
	}
	h.mu.Lock()
	h.regions.Detail = DetailHTML(test, active)
	h.mu.Unlock()
	h.flush()
}

func (h *HTML) flush() {
	if h.sink == nil {
		return
	}
	if err := WriteRegions(h.sink, h.Regions()); err != nil {
		h.log.Warn("write html regions: %v", err)
	}
}

// WriteRegions writes r as three div elements, one per line.
func WriteRegions(w io.Writer, r Regions) error {
	_, err := fmt.Fprintf(w,
		"<div id=\"daemon\">%s</div>\n<div id=\"state\">%s</div>\n<div id=\"detail\">%s</div>\n",
		r.Daemon, r.State, r.Detail)
	return err
}

// DaemonHTML returns the #daemon and #state fragments for one snapshot.
func DaemonHTML(active bool, activities []state.Activity) (daemon, list string) {
	if !active {
		return "<h2>" + IdleMessage + "</h2>", ""
	}

	var b strings.Builder
	b.WriteString("<h2>Current Neubot state is</h2>")
	b.WriteString(`<ul class="hlist gray">`)
	for _, a := range activities {
		if a.Current {
			b.WriteString(`<li id="active">`)
		} else {
			b.WriteString("<li>")
		}
		b.WriteString(html.EscapeString(a.Label))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")

	return "<h2>" + RunningMessage + "</h2>", b.String()
}

// DetailHTML returns the #detail fragment for a test.
func DetailHTML(test *state.Test, active bool) string {
	var b strings.Builder
	b.WriteString("<h2>")
	b.WriteString(DetailHeading(active))
	b.WriteString(`: <span id="testname">`)
	b.WriteString(html.EscapeString(test.Name))
	b.WriteString("</span></h2>")

	b.WriteString(`<ul class="projectseven-uberlist">`)
	for _, task := range test.Tasks {
		fmt.Fprintf(&b, `<li id="%s">%s</li>`,
			html.EscapeString(task.State),
			html.EscapeString(TaskLine(test, task)))
	}
	b.WriteString("</ul>")
	return b.String()
}

// DetailHeading is the heading of the detail region without the test name.
func DetailHeading(active bool) string {
	if active {
		return "Details on current test"
	}
	return "Details on latest test"
}

// TaskLine describes one task: "<label> test <state>", followed by
// ": <value> <unit>" when a result is tagged with the task's label.
func TaskLine(test *state.Test, task state.Task) string {
	line := task.Label + " test " + task.State
	if r, ok := test.ResultFor(task.Label); ok {
		line += ": " + r.String()
	}
	return line
}
