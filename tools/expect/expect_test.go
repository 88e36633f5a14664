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

package expect

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/koala/util/testutil"
)

// TestExpectBasic runs programs/tests/lists.test.yaml.
func TestExpectBasic(t *testing.T) {
	s, err := ReadSession("../../programs/tests/lists.test.yaml")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcomes, err := s.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != len(s.Cases) {
		t.Fatalf("got %d outcomes for %d cases", len(outcomes), len(s.Cases))
	}
}

func TestExpectFailures(t *testing.T) {
	s := &Session{
		Source: testutil.Src(
			"MAX(X, Y, Z) : X >= Y : Z = X | true.",
			"MAX(X, Y, Z) : X < Y  : Z = Y | true.",
			"LOOP : true : true | LOOP."),
		DefaultLimit: 10,
		Concurrency:  2,
		Cases: []Case{
			{
				Goal:    "MAX(3, 5, Z)",
				Stop:    "done",
				Results: []string{"MAX(3, 5, 5)"},
			},
			{
				Doc:     "Wrong answer",
				Goal:    "MAX(3, 5, Z)",
				Results: []string{"MAX(3, 5, 3)"},
			},
			{
				Doc:  "Never stops",
				Goal: "LOOP",
				Stop: "done",
			},
			{
				Doc:      "Inverted guard",
				Goal:     "LOOP",
				Limit:    3,
				Guard:    "step == 3",
				Inverted: true,
			},
			{
				Doc:  "Bad goal",
				Goal: "MAX(1)",
			},
		},
	}

	outcomes, err := s.Run(context.Background())
	failed, is := err.(*Failed)
	if !is {
		t.Fatalf("wanted a *Failed, not %#v", err)
	}
	if len(failed.Outcomes) != len(outcomes) {
		t.Fatal(failed.Outcomes)
	}

	for i, ok := range []bool{true, false, false, false, false} {
		if outcomes[i].Ok() != ok {
			t.Fatalf("case %d: ok is %v; problems: %v", i, outcomes[i].Ok(), outcomes[i].Problems)
		}
	}
	if got := outcomes[2].Walked.StoppedBecause.String(); got != "limited" {
		t.Fatal(got)
	}
}

func TestExpectBadCase(t *testing.T) {
	s := &Session{
		Source: "P : true : true | true.\n",
		Cases: []Case{
			{Goal: "P", LiteralPolicy: "tacos"},
		},
	}
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("should have complained about the policy")
	} else if _, is := err.(*Failed); is {
		t.Fatal("a bad case isn't a failure")
	}

	s.Source = "P : true : true | Q.\n"
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("should have complained about the program")
	}
}
