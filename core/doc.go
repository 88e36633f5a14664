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

// Package core is the resolution engine.
//
// A Session holds a checked rule table, a constraint store and a
// goal: the ordered list of pending predicate calls.  Each step
// detects the alternatives (the goal literals with at least one rule
// whose guard is entailed and whose tell is consistent), selects a
// literal and a rule with two pluggable Selectors, and commits that
// rule: its tell constraints go to the store and its body replaces
// the literal in the goal.  Commits are never undone.
//
// A session is Finished when the goal is empty and Locked when the
// goal is not empty but no literal has an alternative.
//
// The primary methods are Session.Step and Session.Walk, which takes
// steps until the session stops, a step limit is reached, a
// Breakpoint fires, or the context is done.  The context is only
// consulted between steps, so a step is never left half done.
//
// A Session is not safe for concurrent use.
package core
