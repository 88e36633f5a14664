package check

import (
	"strings"

	"github.com/Comcast/koala/ast"
)

// Severity says whether a Diagnostic blocks execution.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one message from the checker.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Pos      ast.Pos  `json:"pos"`
	Msg      string   `json:"msg"`
}

func (d Diagnostic) String() string {
	if d.Severity == Warning {
		return "Warning at [" + d.Pos.String() + "]: " + d.Msg
	}
	return "Semantic error at [" + d.Pos.String() + "]: " + d.Msg
}

// Diagnostics is every message from a check, in the order found.
type Diagnostics []Diagnostic

// HasErrors reports whether any message is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (ds Diagnostics) filter(s Severity) Diagnostics {
	var acc Diagnostics
	for _, d := range ds {
		if d.Severity == s {
			acc = append(acc, d)
		}
	}
	return acc
}

func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(Error)
}

func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(Warning)
}

// Error makes Diagnostics usable as an error when it has errors.
func (ds Diagnostics) Error() string {
	ss := make([]string, len(ds))
	for i, d := range ds {
		ss[i] = d.String()
	}
	return strings.Join(ss, "\n")
}
