/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package strat provides core.Selectors, which decide which
// alternative a session commits.
package strat

import (
	"context"
	"math/rand"
	"sync"

	"github.com/Comcast/koala/core"

	"github.com/pkg/errors"
)

// NoOptions is returned when a selector is offered nothing.
var NoOptions = errors.New("no options to select from")

// First always picks the first option.
type First struct{}

func (First) Select(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, NoOptions
	}
	return 0, nil
}

// Fixed picks the option at Index.  It is an error when there are
// not that many options.
type Fixed struct {
	Index int
}

func (f *Fixed) Select(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, NoOptions
	}
	if f.Index < 0 {
		return 0, errors.Errorf("negative index %d", f.Index)
	}
	if len(options) <= f.Index {
		return 0, errors.Errorf("index %d out of range for %d options", f.Index, len(options))
	}
	return f.Index, nil
}

// Uniform picks an option uniformly at random.  Two Uniforms with the
// same seed make the same choices.
type Uniform struct {
	sync.Mutex
	r *rand.Rand
}

func NewUniform(seed int64) *Uniform {
	return &Uniform{
		r: rand.New(rand.NewSource(seed)),
	}
}

func (u *Uniform) Select(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, NoOptions
	}
	u.Lock()
	i := u.r.Intn(len(options))
	u.Unlock()
	return i, nil
}

// Spec names a policy and carries its parameters.
type Spec struct {
	Policy string
	Index  int
	Seed   int64
	Script string
}

// New makes the named selector.  The Script of a "script" policy is
// a filename.
func New(spec Spec) (core.Selector, error) {
	switch spec.Policy {
	case "", "first":
		return First{}, nil
	case "fixed":
		return &Fixed{Index: spec.Index}, nil
	case "uniform":
		return NewUniform(spec.Seed), nil
	case "script":
		return LoadScript(spec.Script)
	default:
		return nil, errors.Errorf("unknown policy %q", spec.Policy)
	}
}
