/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"io/ioutil"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/parse"
	"github.com/Comcast/koala/util"

	"github.com/pkg/errors"
)

// MaxIncludeDepth limits nested includes.
var MaxIncludeDepth = 16

var includePattern = regexp.MustCompile(`(?m)^[ \t]*#include[ \t]+"([^"]*)"[ \t]*$`)

// Include replaces each line '#include "NAME"' with f(NAME).
//
// Since '#' starts a comment, a file with includes still parses
// without them.
func Include(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	acc := make([]byte, 0, len(bs))
	i := 0
	for _, loc := range includePattern.FindAllSubmatchIndex(bs, -1) {
		acc = append(acc, bs[i:loc[0]]...)
		name := string(bs[loc[2]:loc[3]])
		replacement, err := f(name)
		if err != nil {
			return nil, errors.Wrapf(err, "including %s", name)
		}
		util.Logger().WithField("include", name).Debugf("%d bytes", len(replacement))
		acc = append(acc, replacement...)
		i = loc[1]
	}
	return append(acc, bs[i:]...), nil
}

// ReadFileWithIncludes is a replacement for ioutil.ReadFile that
// expands includes relative to the including file's directory.
func ReadFileWithIncludes(filename string) ([]byte, error) {
	return readWithIncludes(filename, 0)
}

func readWithIncludes(filename string, depth int) ([]byte, error) {
	if MaxIncludeDepth < depth {
		return nil, errors.Errorf("includes nested more than %d deep at %s", MaxIncludeDepth, filename)
	}

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(filename)
	f := func(name string) ([]byte, error) {
		return readWithIncludes(filepath.Join(dir, name), depth+1)
	}

	return Include(bs, f)
}

// LoadFile reads a program.  Files ending in .yaml, .yml or .json
// are program documents.  Anything else is source text, which can
// use includes.
func LoadFile(filename string) (*ast.Program, error) {
	var (
		prog *ast.Program
		bs   []byte
		err  error
	)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".yaml", ".yml", ".json":
		if bs, err = ioutil.ReadFile(filename); err != nil {
			return nil, errors.Wrapf(err, "reading %s", filename)
		}
		prog, err = ast.ParseDocument(bs)
	default:
		if bs, err = ReadFileWithIncludes(filename); err != nil {
			return nil, errors.Wrapf(err, "reading %s", filename)
		}
		prog, err = parse.Program(string(bs))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}

	prog.Name = filename
	return prog, nil
}
