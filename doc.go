// Package koala is an interpreter for Eucalyptus, a small concurrent
// constraint logic language of guarded rules over integers and lists.
//
// The engine is in package 'core', the constraint store in 'store',
// and the command-line driver in `cmd/koala`.
package koala
