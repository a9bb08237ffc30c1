// Package base provides the shared Command embedding and flag-set
// conventions used by every wikitree CLI subcommand.
package base

import (
	"flag"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every leaf and group subcommand. It carries the
// dependencies a subcommand's Run needs without each command having to
// redeclare them.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger
}

// FlagSet wraps the standard flag.FlagSet and accumulates per-flag help
// text so Help() can render a consistent OPTIONS block.
type FlagSet struct {
	*flag.FlagSet

	helpLines []string
}

// NewFlagSet wraps an existing flag.FlagSet.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// StringVar registers a string flag and records its help text.
func (f *FlagSet) StringVar(p *string, name string, value string, usage string) {
	f.FlagSet.StringVar(p, name, value, usage)
	f.record(name, usage)
}

// BoolVar registers a bool flag and records its help text.
func (f *FlagSet) BoolVar(p *bool, name string, value bool, usage string) {
	f.FlagSet.BoolVar(p, name, value, usage)
	f.record(name, usage)
}

// IntVar registers an int flag and records its help text.
func (f *FlagSet) IntVar(p *int, name string, value int, usage string) {
	f.FlagSet.IntVar(p, name, value, usage)
	f.record(name, usage)
}

func (f *FlagSet) record(name, usage string) {
	f.helpLines = append(f.helpLines, "  -"+name+"\n      "+usage)
}

// Help renders the accumulated per-flag help text as an OPTIONS block.
func (f *FlagSet) Help() string {
	if len(f.helpLines) == 0 {
		return ""
	}
	return "\n\nOPTIONS:\n\n" + strings.Join(f.helpLines, "\n\n") + "\n"
}
