package graph

import "context"

type branch struct {
	cond Condition
	node Node
}

// Conditional executes the node paired with the first condition that holds.
// Conditions are evaluated once per Execute, in registration order. When none
// holds the node completes with Error.
type Conditional struct {
	branches []branch
}

func NewConditional() *Conditional {
	return &Conditional{}
}

// If appends a branch.
func (c *Conditional) If(cond Condition, n Node) *Conditional {
	c.branches = append(c.branches, branch{cond: cond, node: n})
	return c
}

// Else appends a branch that always matches.
func (c *Conditional) Else(n Node) *Conditional {
	return c.If(Always, n)
}

func (c *Conditional) Name() string { return "Conditional" }

func (c *Conditional) Execute(ctx context.Context, st *State, done Done) {
	for i, b := range c.branches {
		if b.cond == nil || !b.cond(st) {
			continue
		}
		st.Log().Debug("conditional branch matched", "branch", i, "node", NodeName(b.node))
		b.node.Execute(ctx, st, done)
		return
	}
	st.Log().Error("conditional node matched no branch", "branches", len(c.branches))
	done(Error)
}
