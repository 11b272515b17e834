// Package doctor runs diagnostic checks against the local config and the
// agent, for 'nbwatch doctor'.
package doctor

import (
	"context"
	"fmt"

	"github.com/neubot/nbwatch/internal/util"
)

// CheckStatus is the outcome of one check, from best to worst.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{StatusPass: "pass", StatusWarn: "warn", StatusFail: "fail"}

func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// MarshalText writes the status by name, so JSON reports read "warn".
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names MarshalText writes.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = CheckStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown check status %q", text)
}

// CheckResult is what a check found.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check is one diagnostic.
type Check interface {
	Name() string
	// Category groups checks in the report; see CategoryConfig.
	Category() string
	Run(ctx context.Context) CheckResult
}

// Categories in report order.
const (
	CategoryConfig = "CONFIG"
	CategoryAgent  = "AGENT"
)

// RunAll runs checks one after the other; results line up with checks.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, check.Run(ctx))
	}
	return results
}

// Tally counts results by status.
type Tally struct {
	Pass, Warn, Fail int
}

// Count tallies results.
func Count(results []CheckResult) Tally {
	var t Tally
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			t.Pass++
		case StatusWarn:
			t.Warn++
		case StatusFail:
			t.Fail++
		}
	}
	return t
}

// Issues is the number of warnings and failures.
func (t Tally) Issues() int {
	return t.Warn + t.Fail
}

// Summary is the closing line of the text report.
func (t Tally) Summary() string {
	n := t.Issues()
	if n == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d %s found", n, util.Pluralize(n, "issue", "issues"))
}
