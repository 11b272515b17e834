// Package format converts raw measurement values reported by the agent
// (durations, byte rates, epoch timestamps) into display strings.
//
// Every function is pure except Now, which reads the wall clock. Invalid
// numeric input never fails: it propagates as NaN and renders as "NaN".
package format

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// clock is swapped out by tests.
var clock = time.Now

// ToDuration renders a duration given in seconds as whole milliseconds,
// e.g. 0.1234 -> "123 ms".
func ToDuration(seconds float64) string {
	return fixed(1000*seconds, 0) + " ms"
}

// ToRateNumber converts bytes per second into megabits per second with
// exactly three fraction digits and no unit suffix.
func ToRateNumber(bytesPerSecond float64) string {
	return fixed(bytesPerSecond*8/1000/1000, 3)
}

// ToRate is ToRateNumber followed by the " Mbit/s" suffix.
func ToRate(bytesPerSecond float64) string {
	return ToRateNumber(bytesPerSecond) + " Mbit/s"
}

// ParseText trims surrounding whitespace. Empty input is returned as is.
func ParseText(raw string) string {
	if raw == "" {
		return raw
	}
	return strings.TrimSpace(raw)
}

// Number is the result of ParseNumber. Empty marks a field that was not
// provided at all, which is distinct from a field that failed to parse
// (Value is NaN).
type Number struct {
	Value float64
	Empty bool
}

// IsNaN reports whether a provided value failed numeric coercion.
func (n Number) IsNaN() bool {
	return !n.Empty && math.IsNaN(n.Value)
}

// String renders the number the way it was received: "" when empty.
func (n Number) String() string {
	if n.Empty {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// ParseNumber coerces raw into a number. Empty input yields the empty
// Number; whitespace-only input yields 0; anything unparseable yields NaN.
//
// Accepted forms are decimal literals with an optional sign and exponent,
// unsigned 0x/0o/0b integers, and "Infinity" with an optional sign. Go-only
// spellings such as "inf", "nan", hex floats and digit underscores are
// rejected.
func ParseNumber(raw string) Number {
	if raw == "" {
		return Number{Empty: true}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Number{Value: 0}
	}
	return Number{Value: parseLiteral(trimmed)}
}

func parseLiteral(s string) float64 {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.ContainsAny(s[2:2+1], "+-") {
				return math.NaN()
			}
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}

	if strings.ContainsAny(s, "iInNxXpP_") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

// Now returns the current wall-clock time in milliseconds since the epoch.
func Now() int64 {
	return clock().UnixMilli()
}

// FormatMinutes converts milliseconds to whole minutes rounding up. One
// minute or less renders as "Less than one minute".
func FormatMinutes(milliseconds float64) string {
	minutes := math.Ceil(milliseconds / 1000 / 60)
	if minutes > 1 {
		return strconv.FormatFloat(minutes, 'f', -1, 64) + " minutes"
	}
	return "Less than one minute"
}

// FormatDateTime renders a millisecond timestamp as "YYYY-MM-DD\nHH:MM"
// in the local time zone.
func FormatDateTime(milliseconds float64) string {
	if math.IsNaN(milliseconds) || math.IsInf(milliseconds, 0) {
		return "NaN-NaN-NaN\nNaN:NaN"
	}
	t := time.UnixMilli(int64(milliseconds)).In(time.Local)
	return fmt.Sprintf("%d-%02d-%02d\n%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// fixed formats v with the given number of fraction digits, rounding
// halves away from zero.
func fixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	scale := math.Pow10(digits)
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', digits, 64)
}
