package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalPicksFirstMatchingBranch(t *testing.T) {
	st := newTestState()
	var log []string

	c := NewConditional().
		If(never, recorder(&log, "never", Continue)).
		If(Unauthenticated, recorder(&log, "unauthenticated", Continue)).
		Else(recorder(&log, "else", Error))

	require.Equal(t, Continue, runNode(t, c, st))
	assert.Equal(t, []string{"unauthenticated"}, log)

	log = nil
	st.ExistingUserID = "existing"
	require.Equal(t, Error, runNode(t, c, st))
	assert.Equal(t, []string{"else"}, log)
}

func TestConditionalWithoutMatchFails(t *testing.T) {
	st := newTestState()
	c := NewConditional().If(never, result(Continue))
	assert.Equal(t, Error, runNode(t, c, st))
}

type cleanupRecorder struct {
	finished []string
}

func (c *cleanupRecorder) CandidateAdded(Candidate)              {}
func (c *cleanupRecorder) RetryScheduled(string, int)            {}
func (c *cleanupRecorder) CleanupFinished(node string, _ Result) { c.finished = append(c.finished, node) }

func TestCleanupRunsInRegistrationOrderOnError(t *testing.T) {
	st := newTestState()
	obs := &cleanupRecorder{}
	st.Observer = obs
	var log []string

	g := GraphFunc(func(*State) Node {
		return Forever().
			Add(Named("register", func(_ context.Context, st *State, done Done) {
				st.AddCleanup(recorder(&log, "A", Continue))
				st.AddCleanup(recorder(&log, "B", Error))
				st.AddCleanup(Named("C", func(_ context.Context, _ *State, done Done) {
					go func() {
						time.Sleep(time.Millisecond)
						log = append(log, "C")
						done(Continue)
					}()
				}))
				done(Continue)
			})).
			Add(Named("fail", func(_ context.Context, st *State, done Done) {
				st.AddDiagnostic("original failure")
				done(Error)
			}))
	})

	require.Equal(t, Error, runGraph(t, g, st))
	assert.Equal(t, []string{"A", "B", "C"}, log)
	assert.Equal(t, []string{"A", "B", "C"}, obs.finished)
	assert.Equal(t, []string{"original failure"}, st.Diagnostics())
	assert.Zero(t, st.PendingCleanup())
}

func TestCleanupDiscardedOnSuccess(t *testing.T) {
	st := newTestState()
	var log []string

	g := GraphFunc(func(*State) Node {
		return Named("ok", func(_ context.Context, st *State, done Done) {
			st.AddCleanup(recorder(&log, "A", Continue))
			done(Continue)
		})
	})

	require.Equal(t, Continue, runGraph(t, g, st))
	assert.Empty(t, log)
	assert.Zero(t, st.PendingCleanup())
}

func TestExecuteWithNilRootFails(t *testing.T) {
	st := newTestState()
	g := GraphFunc(func(*State) Node { return nil })
	assert.Equal(t, Error, runGraph(t, g, st))
}
