package strat

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/Comcast/koala/util"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Select if the context is done
	// before the script returns.
	Interrupted = errors.New(InterruptedMessage)
)

// Script is a selector written in ECMAScript 5.1+ and run by Goja.
//
// The script must define a function "select(options)" that returns
// the index of one of the given strings.  The runtime also provides
// an object "_" with:
//
//    log(x): log the given value at debug level.
//    state: an object that survives between calls.
//
// See https://github.com/dop251/goja.
type Script struct {
	Name string

	prog *goja.Program
	o    *goja.Runtime
	fn   goja.Callable
}

// NewScript compiles and runs src, which should define select().
func NewScript(name, src string) (*Script, error) {
	p, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s", name)
	}

	o := goja.New()
	env := map[string]interface{}{
		"state": map[string]interface{}{},
	}
	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		util.Logger().WithField("script", name).Debugf("%v", x)
		return x
	}
	o.Set("_", env)

	if _, err := o.RunProgram(p); err != nil {
		return nil, errors.Wrapf(err, "running %s", name)
	}

	fn, is := goja.AssertFunction(o.Get("select"))
	if !is {
		return nil, fmt.Errorf("%s doesn't define a select function", name)
	}

	return &Script{
		Name: name,
		prog: p,
		o:    o,
		fn:   fn,
	}, nil
}

// LoadScript reads and compiles a script file.
func LoadScript(filename string) (*Script, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return NewScript(filename, string(bs))
}

// Select calls the script's select().  A Script is not safe for
// concurrent use.
func (s *Script) Select(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, NoOptions
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ictx.Done()
		if ctx.Err() != nil {
			s.o.Interrupt(InterruptedMessage)
		}
	}()

	v, err := s.fn(goja.Undefined(), s.o.ToValue(options))
	cancel()
	<-done
	s.o.ClearInterrupt()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return 0, Interrupted
		}
		return 0, errors.Wrapf(err, "%s select", s.Name)
	}

	var i int
	switch vv := v.Export().(type) {
	case int64:
		i = int(vv)
	case float64:
		if vv != float64(int(vv)) {
			return 0, fmt.Errorf("%s select returned %v, not an index", s.Name, vv)
		}
		i = int(vv)
	default:
		return 0, fmt.Errorf("%s select returned %#v (%T), not an index", s.Name, vv, vv)
	}

	if i < 0 || len(options) <= i {
		return 0, fmt.Errorf("%s select returned %d for %d options", s.Name, i, len(options))
	}
	return i, nil
}
