package main

import (
	"github.com/Comcast/koala/check"

	"github.com/fatih/color"
)

type palette struct {
	Error   func(string, ...interface{}) string
	Warning func(string, ...interface{}) string
	Ok      func(string, ...interface{}) string
	Faint   func(string, ...interface{}) string
	Insert  func(string, ...interface{}) string
	Delete  func(string, ...interface{}) string
}

func newPalette(on bool) *palette {
	f := func(attrs ...color.Attribute) func(string, ...interface{}) string {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintfFunc()
	}
	return &palette{
		Error:   f(color.FgRed, color.Bold),
		Warning: f(color.FgYellow),
		Ok:      f(color.FgGreen),
		Faint:   f(color.Faint),
		Insert:  f(color.FgGreen),
		Delete:  f(color.FgRed),
	}
}

func (p *palette) diagnostic(d check.Diagnostic) string {
	if d.Severity == check.Warning {
		return p.Warning("%s", d)
	}
	return p.Error("%s", d)
}
