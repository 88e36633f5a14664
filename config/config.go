// Package config holds the settings for running programs, read from
// a YAML file and overridden by command-line flags.
package config

import (
	"io/ioutil"
	"os"
	"reflect"
	"strings"

	"github.com/Comcast/koala/core"
	"github.com/Comcast/koala/store"
	"github.com/Comcast/koala/strat"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// DefaultFilename is where the CLI looks for a config file.
const DefaultFilename = "koala.yaml"

// ColorMode says when to color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func (m ColorMode) valid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	}
	return false
}

type Config struct {
	// Limit is the maximum number of steps per run.
	Limit int `mapstructure:"limit"`

	// LiteralPolicy and RulePolicy are strat policy names.
	LiteralPolicy string `mapstructure:"literalPolicy"`
	RulePolicy    string `mapstructure:"rulePolicy"`
	LiteralIndex  int    `mapstructure:"literalIndex"`
	RuleIndex     int    `mapstructure:"ruleIndex"`
	Seed          int64  `mapstructure:"seed"`

	// Script is the filename of a script policy.
	Script string `mapstructure:"script"`

	// Breakpoints maps ids to expressions.
	Breakpoints map[string]string `mapstructure:"breakpoints"`

	IntWidth  int   `mapstructure:"intWidth"`
	DomainMin int64 `mapstructure:"domainMin"`
	DomainMax int64 `mapstructure:"domainMax"`

	// Trace, if not empty, is a bbolt file for traces.
	Trace string `mapstructure:"trace"`

	Color ColorMode `mapstructure:"color"`
}

// Default returns a new Config with the default settings.
func Default() *Config {
	return &Config{
		Limit:         core.DefaultControl.Limit,
		LiteralPolicy: "uniform",
		RulePolicy:    "uniform",
		Seed:          1,
		Breakpoints:   map[string]string{},
		IntWidth:      store.DefaultOptions.Width,
		DomainMin:     store.DefaultOptions.Min,
		DomainMax:     store.DefaultOptions.Max,
		Color:         ColorAuto,
	}
}

func colorModeHook(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != reflect.TypeOf(ColorMode("")) {
		return data, nil
	}
	var m ColorMode
	switch f.Kind() {
	case reflect.String:
		m = ColorMode(strings.ToLower(data.(string)))
	case reflect.Bool:
		m = ColorNever
		if data.(bool) {
			m = ColorAlways
		}
	default:
		return data, nil
	}
	if !m.valid() {
		return nil, errors.Errorf("bad color mode %q", data)
	}
	return m, nil
}

// Decode overlays the settings in m onto c.
func (c *Config) Decode(m map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       colorModeHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(m)
}

// Parse overlays a YAML document onto c.
func (c *Config) Parse(bs []byte) error {
	var m map[string]interface{}
	if err := yaml.Unmarshal(bs, &m); err != nil {
		return errors.Wrap(err, "config")
	}
	if err := c.Decode(m); err != nil {
		return errors.Wrap(err, "config")
	}
	return c.Validate()
}

// Load reads a config file.  If the file doesn't exist and missingOk,
// the result is Default().
func Load(filename string, missingOk bool) (*Config, error) {
	c := Default()
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		if missingOk && os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	if err = c.Parse(bs); err != nil {
		return nil, errors.Wrapf(err, "in %s", filename)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Limit < 0 {
		return errors.Errorf("negative limit %d", c.Limit)
	}
	if !c.Color.valid() {
		return errors.Errorf("bad color mode %q", c.Color)
	}
	return c.StoreOptions().Validate()
}

func (c *Config) StoreOptions() *store.Options {
	return &store.Options{
		Width: c.IntWidth,
		Min:   c.DomainMin,
		Max:   c.DomainMax,
	}
}

// Selectors makes the literal and rule selectors.  The rule selector
// is seeded with Seed+1.
func (c *Config) Selectors() (literal, rule core.Selector, err error) {
	if literal, err = strat.New(strat.Spec{
		Policy: c.LiteralPolicy,
		Index:  c.LiteralIndex,
		Seed:   c.Seed,
		Script: c.Script,
	}); err != nil {
		return nil, nil, errors.Wrap(err, "literal policy")
	}
	if rule, err = strat.New(strat.Spec{
		Policy: c.RulePolicy,
		Index:  c.RuleIndex,
		Seed:   c.Seed + 1,
		Script: c.Script,
	}); err != nil {
		return nil, nil, errors.Wrap(err, "rule policy")
	}
	return literal, rule, nil
}

// Control makes a core.Control with the limit and compiled
// breakpoints.
func (c *Config) Control() (*core.Control, error) {
	bs, err := core.CompileBreakpoints(c.Breakpoints)
	if err != nil {
		return nil, err
	}
	return &core.Control{
		Limit:       c.Limit,
		Breakpoints: bs,
	}, nil
}

// Colorize reports whether output to f should be colored.
func (c *Config) Colorize(f *os.File) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddFlags registers flags for the settings that make sense on a
// command line.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int("limit", d.Limit, "maximum number of steps")
	fs.String("literal-policy", d.LiteralPolicy, "literal selection: first, fixed, uniform or script")
	fs.String("rule-policy", d.RulePolicy, "rule selection: first, fixed, uniform or script")
	fs.Int("literal-index", 0, "index for the fixed literal policy")
	fs.Int("rule-index", 0, "index for the fixed rule policy")
	fs.Int64("seed", d.Seed, "seed for the uniform policies")
	fs.String("script", "", "script file for the script policies")
	fs.StringToString("break", nil, "breakpoints as id=expression")
	fs.Int("int-width", d.IntWidth, "bits in the integer encoding")
	fs.Int64("domain-min", d.DomainMin, "smallest variable value")
	fs.Int64("domain-max", d.DomainMax, "largest variable value")
	fs.String("trace", "", "bbolt file for traces")
	fs.String("color", string(d.Color), "auto, always or never")
}

// ApplyFlags overlays the flags that were set onto c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	m := make(map[string]interface{})
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := camel(f.Name)
		switch f.Name {
		case "break":
			var bs map[string]string
			if bs, err = fs.GetStringToString(f.Name); err == nil {
				if c.Breakpoints == nil {
					c.Breakpoints = make(map[string]string, len(bs))
				}
				for id, x := range bs {
					c.Breakpoints[id] = x
				}
			}
			return
		case "literal-index", "rule-index", "limit", "int-width":
			m[key], err = fs.GetInt(f.Name)
		case "seed", "domain-min", "domain-max":
			m[key], err = fs.GetInt64(f.Name)
		case "literal-policy", "rule-policy", "script", "trace", "color":
			m[key], err = fs.GetString(f.Name)
		}
	})
	if err != nil {
		return err
	}
	if err = c.Decode(m); err != nil {
		return err
	}
	return c.Validate()
}

// camel turns "literal-policy" into "literalPolicy".
func camel(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
