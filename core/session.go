package core

import (
	"context"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/check"
	"github.com/Comcast/koala/data"
	"github.com/Comcast/koala/eval"
	"github.com/Comcast/koala/store"
	"github.com/Comcast/koala/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// State is the state of a Session.
type State int

const (
	Idle     State = iota // No goal loaded.
	Ready                 // Alternatives detected.
	Stepping              // A commit is in progress.
	Finished              // The goal is empty.
	Locked                // The goal is not empty but nothing can fire.
)

var stateNames = []string{"idle", "ready", "stepping", "finished", "locked"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(bs []byte) error {
	for i, name := range stateNames {
		if name == string(bs) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown state %q", bs)
}

// Selector picks one of a list of options, which are rendered goal
// literals or rules.
type Selector interface {
	Select(ctx context.Context, options []string) (int, error)
}

type firstSelector struct{}

func (firstSelector) Select(ctx context.Context, options []string) (int, error) {
	return 0, nil
}

// Alternative is a goal literal with the rules that can fire for it.
type Alternative struct {
	GoalIndex int
	Literal   *data.Literal
	Closures  []*data.Closure
}

// Detection is the result of DetectAlternatives for one version of
// the goal.
type Detection struct {
	Version      int
	State        State
	Alternatives []Alternative
}

// Session is one interpretation of a goal against a rule table.
type Session struct {
	// Table is the checked program.
	Table *data.Table

	// Store holds the constraints told so far.
	Store *store.Store

	// Goal holds the pending literals.
	Goal data.Goal

	// Query holds the literals of the goal as loaded.  Results
	// renders them.
	Query []*data.Literal

	// LiteralPolicy and RulePolicy select what to commit.  Nil
	// means the first option.
	LiteralPolicy Selector
	RulePolicy    Selector

	// Metrics, if not nil, is updated as the session runs.
	Metrics *Metrics

	opts      store.Options
	loaded    bool
	state     State
	version   int
	steps     int
	solves    int
	detection *Detection
}

// NewSession makes an Idle session.  A nil Options means
// store.DefaultOptions.
func NewSession(table *data.Table, opts *store.Options) *Session {
	if opts == nil {
		opts = store.DefaultOptions
	}
	return &Session{
		Table: table,
		Store: store.New(opts),
		opts:  *opts,
	}
}

func (s *Session) State() State {
	return s.state
}

// Steps is the number of commits so far.
func (s *Session) Steps() int {
	return s.steps
}

// Version changes every time the goal does.
func (s *Session) Version() int {
	return s.version
}

// LoadGoal checks the goal against the table and makes it the
// session's goal with a fresh store.  Diagnostics may hold warnings
// even when the error is nil.
func (s *Session) LoadGoal(goal []*ast.Expr) (check.Diagnostics, error) {
	if s.Table == nil {
		return nil, NoProgram
	}
	g, diags := check.LoadGoal(s.Table, goal)
	if diags.HasErrors() {
		return diags, errors.Wrap(diags.Errors(), "goal rejected")
	}
	s.Store = store.New(&s.opts)
	s.Goal = g
	s.Query = append(make([]*data.Literal, 0, len(g)), g...)
	s.loaded = true
	s.steps = 0
	s.solves = 0
	s.version++
	s.detection = nil
	s.DetectAlternatives()
	return diags, nil
}

// try runs a closure's guard and tell check for a literal without
// changing the literal's arguments.  An uninitialized argument that
// appears more than once shares one placeholder.
func (s *Session) try(c *data.Closure, lit *data.Literal) bool {
	c.Env.Reset()
	stand := make(map[*data.Value]*data.Value)
	for i, p := range c.Rule.Params {
		arg := lit.Args[i]
		if !arg.IsInitialized() {
			v, have := stand[arg]
			if !have {
				v = data.NewValue(arg.Name)
				stand[arg] = v
			}
			arg = v
		}
		c.Env.Set(p.Name, arg)
	}
	return eval.Ask(s.Store, c.Rule, c.Env) && eval.TellCheck(s.Store, c.Rule, c.Env)
}

// DetectAlternatives finds every goal literal with at least one rule
// that can fire, in goal order, each with its rules in source order.
// The result is cached until the goal changes.
func (s *Session) DetectAlternatives() *Detection {
	if s.detection != nil && s.detection.Version == s.version {
		return s.detection
	}
	if s.Table == nil || !s.loaded {
		s.state = Idle
		return &Detection{Version: s.version, State: Idle}
	}

	d := &Detection{
		Version: s.version,
	}
	for i, lit := range s.Goal {
		var cs []*data.Closure
		for _, c := range s.Table.Get(lit.Key()) {
			if s.try(c, lit) {
				cs = append(cs, c)
			}
		}
		if 0 < len(cs) {
			d.Alternatives = append(d.Alternatives, Alternative{
				GoalIndex: i,
				Literal:   lit,
				Closures:  cs,
			})
		}
	}

	switch {
	case len(s.Goal) == 0:
		d.State = Finished
	case len(d.Alternatives) == 0:
		d.State = Locked
	default:
		d.State = Ready
	}

	s.state = d.State
	s.detection = d
	s.observeDetection(d)

	util.Logger().WithFields(logrus.Fields{
		"step":         s.steps,
		"alternatives": len(d.Alternatives),
		"state":        d.State,
	}).Debug("detected")

	return d
}

// CommitStep commits rule ruleIndex of alternative literalIndex from
// d, which must be the current detection.
func (s *Session) CommitStep(d *Detection, literalIndex, ruleIndex int) error {
	if s.Table == nil {
		return NoProgram
	}
	if d == nil || d.Version != s.version {
		detected := -1
		if d != nil {
			detected = d.Version
		}
		return &StaleIndex{Detected: detected, Current: s.version}
	}
	if s.state != Ready {
		return &NotReady{State: s.state, Op: "commit"}
	}
	if literalIndex < 0 || len(d.Alternatives) <= literalIndex {
		return &BadSelection{What: "literal", Index: literalIndex, Count: len(d.Alternatives)}
	}
	alt := d.Alternatives[literalIndex]
	if ruleIndex < 0 || len(alt.Closures) <= ruleIndex {
		return &BadSelection{What: "rule", Index: ruleIndex, Count: len(alt.Closures)}
	}
	if len(s.Goal) <= alt.GoalIndex || s.Goal[alt.GoalIndex] != alt.Literal {
		return &StaleIndex{Detected: d.Version, Current: s.version}
	}

	c := alt.Closures[ruleIndex]
	if !s.try(c, alt.Literal) {
		c.Env.Reset()
		return &Rejected{Rule: c.Rule.Head(), Literal: alt.Literal.Render(s.Store)}
	}

	s.state = Stepping

	log := util.Logger().WithFields(logrus.Fields{
		"step": s.steps + 1,
		"rule": c.Rule.Head(),
	})
	if log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		// Rendering asks the store for values.
		log = log.WithField("literal", alt.Literal.Render(s.Store))
	}

	c.Env.Reset()
	for i, p := range c.Rule.Params {
		c.Env.Set(p.Name, alt.Literal.Args[i])
	}
	if !eval.Ask(s.Store, c.Rule, c.Env) {
		log.Warn("guard no longer entailed at commit")
	}
	eval.TellCommit(s.Store, c.Rule, c.Env)
	eval.Body(c.Rule, c.Env, &s.Goal, alt.GoalIndex)

	s.steps++
	s.version++
	s.observeCommit()

	log.WithField("goal", len(s.Goal)).Debug("committed")

	s.DetectAlternatives()
	return nil
}

// Results renders the loaded goal's literals with their current
// values.
func (s *Session) Results() []string {
	return data.Goal(s.Query).Render(s.Store)
}
