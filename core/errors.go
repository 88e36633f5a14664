package core

// These errors report misuse of a Session by its driver.  Rules that
// cannot fire are not errors.

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotReady occurs when a step is attempted in a state that has no
// alternatives to commit.
type NotReady struct {
	State State
	Op    string
}

func (e *NotReady) Error() string {
	return fmt.Sprintf(`cannot %s in state "%s"`, e.Op, e.State)
}

// StaleIndex occurs when a commit uses alternatives detected before
// the goal last changed.
type StaleIndex struct {
	Detected int
	Current  int
}

func (e *StaleIndex) Error() string {
	return fmt.Sprintf("alternatives from goal version %d used at version %d", e.Detected, e.Current)
}

// BadSelection occurs when a literal or rule index is out of range.
type BadSelection struct {
	What  string
	Index int
	Count int
}

func (e *BadSelection) Error() string {
	return fmt.Sprintf("%s index %d not in [0,%d)", e.What, e.Index, e.Count)
}

// Rejected occurs when the selected rule's tells can no longer be
// committed together.  Nothing is told.
type Rejected struct {
	Rule    string
	Literal string
}

func (e *Rejected) Error() string {
	return fmt.Sprintf("rule %s rejected for %s", e.Rule, e.Literal)
}

// NoProgram occurs when a goal is loaded into a session without a
// rule table.
var NoProgram = errors.New("no program loaded")

// NoGoal occurs when a session without a goal is stepped.
var NoGoal = errors.New("no goal loaded")
