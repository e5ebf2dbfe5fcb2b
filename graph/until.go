package graph

import (
	"context"
	"fmt"
)

const defaultUntilFailure = "Condition was not met in sequence node: %s"

// Condition is a pure, synchronous predicate over the current state.
type Condition func(st *State) bool

// Until runs its children in order until one fails, its condition holds, or
// the last child completes.
//
// When the run ends with Continue and the node requires a passing condition,
// the condition is evaluated once more; if it does not hold, a diagnostic is
// recorded and the node completes with Error instead.
type Until struct {
	name           string
	children       []Node
	condition      Condition
	requirePass    bool
	failureMessage string

	running bool
	index   int
	ctx     context.Context
	st      *State
	done    Done
}

// Forever runs every child once in order and propagates the last result.
func Forever() *Until {
	return &Until{name: "Forever", condition: never}
}

// UntilConditionMet runs children until cond holds. Exhausting the children
// without cond holding is an error unless AllowFailure(true) is set.
func UntilConditionMet(name string, cond Condition, failureMessage string) *Until {
	if cond == nil {
		cond = never
	}
	return &Until{
		name:           name,
		condition:      cond,
		requirePass:    true,
		failureMessage: failureMessage,
	}
}

// UntilCrossPlatformAccountPresent stops as soon as a cross-platform account
// has been authenticated.
func UntilCrossPlatformAccountPresent(failureMessage string) *Until {
	return UntilConditionMet("CrossPlatformAccountPresent", CrossPlatformAccountIsValid, failureMessage)
}

// UntilLoginComplete stops as soon as a result identity has been set.
func UntilLoginComplete(failureMessage string) *Until {
	return UntilConditionMet("LoginComplete", LoginComplete, failureMessage)
}

// AllowFailure controls whether a condition that never held turns a
// Continue into an Error.
func (u *Until) AllowFailure(allow bool) *Until {
	u.requirePass = !allow
	return u
}

// Add appends a child and returns u for chaining.
func (u *Until) Add(n Node) *Until {
	if n != nil {
		u.children = append(u.children, n)
	}
	return u
}

// Len returns the number of children.
func (u *Until) Len() int { return len(u.children) }

func (u *Until) Name() string { return u.name }

func (u *Until) Execute(ctx context.Context, st *State, done Done) {
	if u.running {
		panic(fmt.Sprintf("graph: sequence node %s executed while already running", u.name))
	}
	if len(u.children) == 0 {
		st.Log().Error("sequence node has no children", "node", u.name)
		done(Error)
		return
	}

	u.running = true
	u.index = 0
	u.ctx = ctx
	u.st = st
	u.done = done

	st.Log().Debug("sequence node started", "node", u.name, "children", len(u.children))
	u.runChild()
}

func (u *Until) runChild() {
	child := u.children[u.index]
	child.Execute(u.ctx, u.st, once(NodeName(child), u.onChildDone))
}

func (u *Until) onChildDone(r Result) {
	if r == Error || u.condition(u.st) || u.index == len(u.children)-1 {
		u.finalize(r)
		return
	}
	u.index++
	u.runChild()
}

func (u *Until) finalize(r Result) {
	st, done := u.st, u.done

	if r == Continue && u.requirePass && !u.condition(st) {
		msg := u.failureMessage
		if msg == "" {
			msg = fmt.Sprintf(defaultUntilFailure, u.name)
		}
		st.AddDiagnostic(msg)
		r = Error
	}

	u.running = false
	u.index = 0
	u.ctx = nil
	u.st = nil
	u.done = nil

	st.Log().Debug("sequence node finished", "node", u.name, "result", r.String())
	done(r)
}

func never(*State) bool { return false }
