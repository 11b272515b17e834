// Package cli implements the nbwatch command-line interface.
//
// Commands are Cobra commands that load configuration, build an agent
// client and hand off to the poll loop or a one-shot request:
//
//	nbwatch watch      - Follow the agent state (TUI, plain or HTML output)
//	nbwatch state      - Fetch and print one state snapshot
//	nbwatch init       - Create .nbwatch.yaml
//	nbwatch doctor     - Diagnose config and agent issues
//	nbwatch version    - Print version information
//	nbwatch completion - Generate shell completion scripts
//
// Global flags (--config, --debug, --no-color, --json) are defined on the
// root command and available to all subcommands.
package cli
