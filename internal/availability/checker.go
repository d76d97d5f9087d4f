// Package availability answers "is this project name/symbol still free for
// this artist?" with a tri-state verdict that never reports a false
// "available".
package availability

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

type Verdict int

const (
	Unknown Verdict = iota
	Available
	Taken
)

func (v Verdict) String() string {
	switch v {
	case Available:
		return "available"
	case Taken:
		return "taken"
	default:
		return "unknown"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Kind selects which uniqueness rule a check applies.
type Kind int

const (
	ProjectName Kind = iota
	ProjectSymbol
)

const minNameLen = 2

// Lookup is the backend capability the checker needs; *directory.Client
// satisfies it.
type Lookup interface {
	CheckProjectName(ctx context.Context, name, artistID string) (bool, error)
	CheckProjectSymbol(ctx context.Context, symbol, artistID string) (bool, error)
}

// Checker runs remote uniqueness checks. A nil limiter disables throttling.
type Checker struct {
	lookup  Lookup
	limiter *rate.Limiter
}

func NewChecker(lookup Lookup, limiter *rate.Limiter) *Checker {
	return &Checker{lookup: lookup, limiter: limiter}
}

// TooShort reports whether candidate is below the length at which a check is
// worth sending: names need two characters, symbols one.
func TooShort(kind Kind, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if kind == ProjectName {
		return utf8.RuneCountInString(candidate) < minNameLen
	}
	return candidate == ""
}

// Check returns Unknown for short input without touching the network, and
// collapses every failure (throttle wait, transport, decode, backend error)
// to Unknown.
func (c *Checker) Check(ctx context.Context, kind Kind, candidate, artistID string) Verdict {
	if TooShort(kind, candidate) || artistID == "" {
		return Unknown
	}
	candidate = strings.TrimSpace(candidate)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Unknown
		}
	}

	var (
		free bool
		err  error
	)
	if kind == ProjectName {
		free, err = c.lookup.CheckProjectName(ctx, candidate, artistID)
	} else {
		free, err = c.lookup.CheckProjectSymbol(ctx, candidate, artistID)
	}
	if err != nil {
		logging.NewLogger(ctx).LogWarnf("availability", "check failed for %q: %v", candidate, err)
		return Unknown
	}
	if free {
		return Available
	}
	return Taken
}

// Field is the live state of one availability-checked input: the current
// text, its verdict and whether a check is in flight. Every SetInput resets
// the verdict to Unknown and invalidates checks started for older text.
type Field struct {
	kind    Kind
	checker *Checker

	mu      sync.Mutex
	input   string
	verdict Verdict
	loading bool
	seq     uint64
}

func NewField(kind Kind, checker *Checker) *Field {
	return &Field{kind: kind, checker: checker}
}

// FieldState is a point-in-time copy of a Field.
type FieldState struct {
	Input   string  `json:"input"`
	Verdict Verdict `json:"verdict"`
	Loading bool    `json:"loading"`
}

func (f *Field) SetInput(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == f.input {
		return
	}
	f.input = s
	f.verdict = Unknown
	f.loading = false
	f.seq++
}

// Check runs a remote check for the current input and returns the resulting
// state. If the input changes while the request is outstanding, the late
// verdict is dropped.
func (f *Field) Check(ctx context.Context, artistID string) FieldState {
	f.mu.Lock()
	input, seq := f.input, f.seq
	if TooShort(f.kind, input) {
		f.verdict = Unknown
		st := f.stateLocked()
		f.mu.Unlock()
		return st
	}
	f.loading = true
	f.mu.Unlock()

	v := f.checker.Check(ctx, f.kind, input, artistID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seq == seq {
		f.verdict = v
		f.loading = false
	}
	return f.stateLocked()
}

func (f *Field) State() FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Field) stateLocked() FieldState {
	return FieldState{Input: f.input, Verdict: f.verdict, Loading: f.loading}
}
