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

package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/Comcast/koala/ast"
	"github.com/Comcast/koala/parse"

	"github.com/google/go-cmp/cmp"
)

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Src joins lines into a program text.
func Src(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// Same fails the test with a diff when want and got differ.
func Same(t testing.TB, want, got interface{}, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Fatalf("mismatch (-want +got):\n%s", d)
	}
}

// MustParse parses a program or fails the test.
func MustParse(t testing.TB, lines ...string) *ast.Program {
	t.Helper()
	prog, err := parse.Program(Src(lines...))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}
