// Package clix implements a small hand-rolled flag registry for cmd/kirc,
// adapted from the donor's pkg/cli.FlagSet — the Value/Flag/FlagSet
// shape and long-flag (`--name=value` / `--name value`) parsing are kept
// verbatim in spirit; the donor's shorthand table, flag-group help
// sections, and indent-state formatter are trimmed since this driver has
// none of gbc's feature-flag sprawl to document.
package clix

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the donor's minimal settable-flag interface.
type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value %q: %w", s, err)
	}
	*v.p = b
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type Flag struct {
	Name  string
	Usage string
	Value Value
}

// FlagSet is a name-indexed set of long flags (`-name`/`--name`), parsed
// left to right, collecting everything else into Args.
type FlagSet struct {
	name  string
	flags map[string]*Flag
	order []string
	args  []string
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{name: name, flags: make(map[string]*Flag)}
}

func (f *FlagSet) Args() []string { return f.args }

func (f *FlagSet) String(p *string, name, value, usage string) {
	*p = value
	f.var_(&stringValue{p}, name, usage)
}

func (f *FlagSet) Bool(p *bool, name string, value bool, usage string) {
	*p = value
	f.var_(&boolValue{p}, name, usage)
}

func (f *FlagSet) var_(value Value, name, usage string) {
	if _, ok := f.flags[name]; ok {
		panic("flag redefined: " + name)
	}
	f.flags[name] = &Flag{Name: name, Usage: usage, Value: value}
	f.order = append(f.order, name)
}

// Parse consumes arguments, accepting `-name`, `--name`, `-name=value`,
// `--name value`. An argument that does not start with '-' is a positional
// argument — input source paths, for cmd/kirc; a dashed argument that
// names no registered flag is an error.
func (f *FlagSet) Parse(arguments []string) error {
	f.args = nil
	for i := 0; i < len(arguments); i++ {
		arg := arguments[i]
		if len(arg) < 2 || arg[0] != '-' {
			f.args = append(f.args, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		var inlineValue string
		hasInline := false
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			inlineValue = name[idx+1:]
			name = name[:idx]
			hasInline = true
		}

		flag, ok := f.flags[name]
		if !ok {
			return fmt.Errorf("unknown flag: %s", arg)
		}
		if hasInline {
			if err := flag.Value.Set(inlineValue); err != nil {
				return err
			}
			continue
		}
		if _, isBool := flag.Value.(*boolValue); isBool {
			if err := flag.Value.Set(""); err != nil {
				return err
			}
			continue
		}
		if i+1 >= len(arguments) {
			return fmt.Errorf("flag needs an argument: %s", arg)
		}
		i++
		if err := flag.Value.Set(arguments[i]); err != nil {
			return err
		}
	}
	return nil
}

// Usage renders one line per registered flag, in registration order.
func (f *FlagSet) Usage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "usage: %s [flags] <input>\n", f.name)
	for _, name := range f.order {
		fl := f.flags[name]
		fmt.Fprintf(&b, "  -%-12s %s\n", name, fl.Usage)
	}
	return b.String()
}
