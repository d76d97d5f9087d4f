package availability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

type fakeLookup struct {
	calls   atomic.Int32
	taken   map[string]bool
	err     error
	onCheck func()
}

func (f *fakeLookup) check(candidate string) (bool, error) {
	f.calls.Add(1)
	if f.onCheck != nil {
		f.onCheck()
	}
	if f.err != nil {
		return false, f.err
	}
	return !f.taken[candidate], nil
}

func (f *fakeLookup) CheckProjectName(_ context.Context, name, _ string) (bool, error) {
	return f.check(name)
}

func (f *fakeLookup) CheckProjectSymbol(_ context.Context, symbol, _ string) (bool, error) {
	return f.check(symbol)
}

func TestChecker_ShortInputSkipsNetwork(t *testing.T) {
	lookup := &fakeLookup{}
	c := NewChecker(lookup, nil)

	assert.Equal(t, Unknown, c.Check(context.Background(), ProjectName, "A", "artist-1"))
	assert.Equal(t, Unknown, c.Check(context.Background(), ProjectSymbol, "  ", "artist-1"))
	assert.Equal(t, int32(0), lookup.calls.Load())
}

func TestChecker_Verdicts(t *testing.T) {
	lookup := &fakeLookup{taken: map[string]bool{"Taken Name": true, "TKN": true}}
	c := NewChecker(lookup, nil)
	ctx := context.Background()

	assert.Equal(t, Available, c.Check(ctx, ProjectName, "Fresh Name", "a1"))
	assert.Equal(t, Taken, c.Check(ctx, ProjectName, "Taken Name", "a1"))
	assert.Equal(t, Available, c.Check(ctx, ProjectSymbol, "X", "a1"))
	assert.Equal(t, Taken, c.Check(ctx, ProjectSymbol, "TKN", "a1"))
}

func TestChecker_FailureIsUnknownNotAvailable(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection reset")}
	c := NewChecker(lookup, nil)

	assert.Equal(t, Unknown, c.Check(context.Background(), ProjectName, "Anything", "a1"))
	assert.Equal(t, int32(1), lookup.calls.Load())
}

func TestChecker_LimiterCancelledIsUnknown(t *testing.T) {
	lookup := &fakeLookup{}
	limiter := rate.NewLimiter(rate.Limit(0.001), 1)
	c := NewChecker(lookup, limiter)

	assert.Equal(t, Available, c.Check(context.Background(), ProjectName, "First", "a1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Unknown, c.Check(ctx, ProjectName, "Second", "a1"))
	assert.Equal(t, int32(1), lookup.calls.Load())
}

func TestField_InputChangeResetsVerdict(t *testing.T) {
	lookup := &fakeLookup{taken: map[string]bool{"Taken": true}}
	f := NewField(ProjectName, NewChecker(lookup, nil))

	f.SetInput("Taken")
	st := f.Check(context.Background(), "a1")
	assert.Equal(t, Taken, st.Verdict)
	assert.False(t, st.Loading)

	f.SetInput("Taken!")
	assert.Equal(t, Unknown, f.State().Verdict)
}

func TestField_StaleResponseDropped(t *testing.T) {
	lookup := &fakeLookup{taken: map[string]bool{"Old": true}}
	f := NewField(ProjectName, NewChecker(lookup, nil))
	f.SetInput("Old")

	// The input changes while the request for "Old" is in flight.
	lookup.onCheck = func() { f.SetInput("New") }

	st := f.Check(context.Background(), "a1")
	assert.Equal(t, "New", st.Input)
	assert.Equal(t, Unknown, st.Verdict)
}

func TestField_ShortInputNoCall(t *testing.T) {
	lookup := &fakeLookup{}
	f := NewField(ProjectName, NewChecker(lookup, nil))
	f.SetInput("x")

	st := f.Check(context.Background(), "a1")
	assert.Equal(t, Unknown, st.Verdict)
	assert.Equal(t, int32(0), lookup.calls.Load())
}

func TestVerdict_MarshalText(t *testing.T) {
	b, err := Taken.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "taken", string(b))
}
