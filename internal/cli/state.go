package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"

	"github.com/neubot/nbwatch/internal/errors"
	"github.com/neubot/nbwatch/internal/render"
	"github.com/neubot/nbwatch/internal/state"
	"github.com/neubot/nbwatch/internal/statesync"
	"github.com/neubot/nbwatch/internal/ui"
	"github.com/spf13/cobra"
)

var (
	stateEndpointFlag string
	stateCursorFlag   string
	stateHTMLFlag     bool
)

// stateCmd fetches one snapshot and exits
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Fetch one state snapshot and exit",
	Long: `Issue a single state request and print the result.

With the default cursor of 0 the agent answers immediately with its
current state. Passing the cursor of a previous answer waits until the
state changes after it.

Examples:
  nbwatch state
  nbwatch state --json
  nbwatch state --html
  nbwatch state --cursor 1302`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stateCommand(cmd.Context(), cmd.OutOrStdout(), stateOptions{
			Endpoint: stateEndpointFlag,
			Cursor:   stateCursorFlag,
			HTML:     stateHTMLFlag,
			JSON:     machineMode,
		})
	},
}

func init() {
	stateCmd.Flags().StringVar(&stateEndpointFlag, "endpoint", "", "agent base URL (overrides config)")
	stateCmd.Flags().StringVar(&stateCursorFlag, "cursor", state.InitialCursor, "cursor to send with the request")
	stateCmd.Flags().BoolVar(&stateHTMLFlag, "html", false, "print the HTML regions instead of text")
	rootCmd.AddCommand(stateCmd)
}

type stateOptions struct {
	Endpoint string
	Cursor   string
	HTML     bool
	JSON     bool
}

// StateView is the --json shape of one snapshot.
type StateView struct {
	Cursor     string         `json:"cursor"`
	Active     bool           `json:"active"`
	Activities []ActivityView `json:"activities"`
	Test       *TestView      `json:"test,omitempty"`
}

// ActivityView is one entry of StateView.Activities.
type ActivityView struct {
	Label   string `json:"label"`
	Current bool   `json:"current,omitempty"`
}

// TestView describes the test section, with results joined to their tasks.
type TestView struct {
	Name  string     `json:"name"`
	Tasks []TaskView `json:"tasks"`
}

// TaskView is one task and, when the agent reported one, its result.
type TaskView struct {
	Label  string `json:"label"`
	State  string `json:"state"`
	Value  string `json:"value,omitempty"`
	Unit   string `json:"unit,omitempty"`
	Result string `json:"result,omitempty"`
}

// snapshotRecorder is a renderer that keeps the last render pass.
type snapshotRecorder struct {
	active     bool
	activities []state.Activity
	test       *state.Test
	testActive bool
}

func (r *snapshotRecorder) RenderDaemonState(active bool, activities []state.Activity) {
	r.active = active
	r.activities = activities
}

func (r *snapshotRecorder) RenderTestDetail(test *state.Test, active bool) {
	r.test = test
	r.testActive = active
}

// stateCommand performs one poll and writes the outcome in the chosen format.
func stateCommand(ctx context.Context, w io.Writer, opts stateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	wc, err := SetupWorkflow(ctx, WorkflowOptions{Endpoint: opts.Endpoint})
	if err != nil {
		return err
	}
	defer wc.Close()

	cursor := opts.Cursor
	if cursor == "" {
		cursor = state.InitialCursor
	}

	rec := &snapshotRecorder{}
	syncer := statesync.New(wc.Client, rec,
		statesync.WithCursor(cursor),
		statesync.WithLogger(wc.Log),
	)
	if err := syncer.Poll(ctx); err != nil {
		return pollError(err, wc.Client.StateURL(cursor))
	}

	switch {
	case opts.JSON:
		return WriteJSONSuccess(w, newStateView(syncer.Cursor(), rec))
	case opts.HTML:
		h := render.NewHTML(render.WithHTMLLogger(wc.Log))
		h.RenderDaemonState(rec.active, rec.activities)
		if rec.test != nil {
			h.RenderTestDetail(rec.test, rec.testActive)
		}
		if err := render.WriteRegions(w, h.Regions()); err != nil {
			return errors.WrapWithCode(err, errors.ErrRender, "Failed to write output", "")
		}
		return nil
	default:
		printHeader(ctx, wc, w)
		fmt.Fprint(w, stateText(syncer.Cursor(), rec))
		return nil
	}
}

// pollError classifies a failed poll for the user.
func pollError(err error, url string) error {
	if stderrors.Is(err, statesync.ErrMalformedDocument) {
		return errors.WrapWithCode(err, errors.ErrParse,
			"The agent sent a state document nbwatch can't read",
			"Check that "+url+" is served by a Neubot agent")
	}
	return errors.WrapWithCode(err, errors.ErrTransport,
		"Can't get the agent state",
		"Check that Neubot is running and reachable at "+url)
}

func newStateView(cursor string, rec *snapshotRecorder) StateView {
	view := StateView{
		Cursor:     cursor,
		Active:     rec.active,
		Activities: []ActivityView{},
	}
	if rec.active {
		for _, a := range rec.activities {
			view.Activities = append(view.Activities, ActivityView{Label: a.Label, Current: a.Current})
		}
	}
	if rec.test != nil {
		tv := &TestView{Name: rec.test.Name, Tasks: []TaskView{}}
		for _, task := range rec.test.Tasks {
			item := TaskView{Label: task.Label, State: task.State}
			if r, ok := rec.test.ResultFor(task.Label); ok {
				item.Value = r.Value
				item.Unit = r.Unit
				item.Result = r.String()
			}
			tv.Tasks = append(tv.Tasks, item)
		}
		view.Test = tv
	}
	return view
}

// stateText renders a snapshot for humans: the daemon block, then a task
// table, then any results that no task refers to.
func stateText(cursor string, rec *snapshotRecorder) string {
	out := render.DaemonText(rec.active, rec.activities) + "\n"

	if rec.test == nil {
		out += ui.MutedStyle().Render("No test details reported") + "\n"
	} else {
		out += "\n" + render.DetailHeading(rec.testActive) + ": " + rec.test.Name + "\n"
		out += taskTable(rec.test) + "\n"
		if extra := orphanResults(rec.test); extra != "" {
			out += extra
		}
	}

	out += ui.MutedStyle().Render("cursor "+cursor) + "\n"
	return out
}

var taskColumns = []ui.Column{
	{Title: "Task", Width: 14},
	{Title: "State", Width: 12},
	{Title: "Result", Width: 20},
}

func taskTable(test *state.Test) string {
	rows := make([][]string, 0, len(test.Tasks))
	for _, task := range test.Tasks {
		result := ""
		if r, ok := test.ResultFor(task.Label); ok {
			result = r.String()
		}
		rows = append(rows, []string{task.Label, ui.TaskSymbol(task.State) + " " + task.State, result})
	}
	if len(rows) == 0 {
		return ui.MutedStyle().Render("No tasks")
	}
	return ui.RenderTable(taskColumns, rows)
}

// orphanResults lists results whose tag matches no task, sorted by tag.
func orphanResults(test *state.Test) string {
	seen := make(map[string]bool, len(test.Tasks))
	for _, task := range test.Tasks {
		seen[task.Label] = true
	}

	var tags []string
	for tag := range test.Results {
		if !seen[tag] {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return ""
	}
	sort.Strings(tags)

	out := ""
	for _, tag := range tags {
		out += fmt.Sprintf("  %s: %s\n", tag, test.Results[tag])
	}
	return out
}
