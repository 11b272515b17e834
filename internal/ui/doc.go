// Package ui provides the terminal palette, status glyphs and small
// Bubble Tea components shared by nbwatch's renderers and commands.
//
// # Colors
//
// The neon palette (ColorNeonPink, ColorNeonCyan, ...) is used for accents.
// Semantic colors map to outcomes:
//
//	ColorSuccess  - finished tasks
//	ColorError    - failed tasks and errors
//	ColorWarning  - warnings and skipped tasks
//	ColorInfo     - running tasks
//	ColorMuted    - timestamps and secondary text
//
// Call DisableColors for monochrome output.
//
// # Task glyphs
//
// The agent reports task states as free text. TaskSymbol and TaskStyle map
// the common ones ("done", "running", "failed", ...) to a glyph and color;
// anything else renders as pending.
//
// # Components
//
//	WaitIndicator    - spinner shown while waiting on the agent
//	RenderTable      - static bubbles table
//	RenderHeader     - branded header for one-shot commands
package ui
