// Package storage persists session traces.
//
// Traces are grouped by program, where a program is identified by
// its fingerprint (see ProgramId), so runs of a reformatted source
// file land with earlier runs of the same rules.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/core"

	"github.com/jsccast/yaml"
	"github.com/pkg/errors"
)

// Trace is a presentation of one Walk as stored in a Storage system.
type Trace struct {
	// Id is the id for the trace within its program.  A Storage
	// assigns one if it's empty.
	Id string `json:"id,omitempty"`

	// Source names where the program came from (usually a
	// filename).
	Source string `json:"source,omitempty"`

	Goal   string       `json:"goal"`
	At     time.Time    `json:"at"`
	Walked *core.Walked `json:"walked"`

	// Deleted indicates that this trace should be removed.
	Deleted bool `json:"-" yaml:"-"`
}

// Storage is a persistence interface for traces.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	MakeProgram(ctx context.Context, pid string) error

	RemProgram(ctx context.Context, pid string) error

	GetTraces(ctx context.Context, pid string) ([]*Trace, error)

	WriteTraces(ctx context.Context, pid string, ts []*Trace) error
}

// ProgramId is the key for a program's traces.
func ProgramId(p *ast.Program) (string, error) {
	h, err := p.Fingerprint()
	if err != nil {
		return "", errors.Wrap(err, "fingerprint")
	}
	return fmt.Sprintf("%016x", h), nil
}

// Render writes traces as "json" or "yaml".
func Render(ts []*Trace, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(ts, "", "  ")
	case "yaml", "":
		return yaml.Marshal(ts)
	default:
		return nil, errors.Errorf("unknown trace format %q", format)
	}
}
