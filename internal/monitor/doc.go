// Package monitor implements the interactive terminal dashboard for the
// agent's state.
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: the last rendered content of the daemon and detail regions,
//     plus header data (agent version, session age, last update)
//   - Update: applies render passes, poll failures, keys and resizes
//   - View: draws the header, the agent section with the activity list,
//     the scrollable detail section and the key hints
//
// # Message Flow
//
// The poll loop (statesync.Syncer) runs in its own goroutine and renders
// into a Bridge, which turns every call into a message for the program:
//
//  1. RenderDaemonState -> DaemonStateMsg
//  2. RenderTestDetail  -> TestDetailMsg (only when the document has a test)
//  3. PollFailed        -> PollFailedMsg (cleared by the next render)
//
// The model never calls back into the loop. Quitting cancels the loop's
// context.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	j/k, ↑/↓    - Scroll the detail section
//	g/G         - Jump to top / bottom
//	?           - Toggle help overlay
//	Esc         - Close help
package monitor
