// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/pagectlgo/internal/config"
	"github.com/staranto/pagectlgo/internal/meta"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// CommandBuilder constructs a cli.Command for subcommands using a consistent
// pattern. The builder wires metadata, applies global flags, and sets up
// validators.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: append(cb.Flags, NewGlobalFlags(cb.Name, cb.Meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// ExpandArgSets splices named argument sets from the config file into args.
// An argument of the form @name is replaced by the entries of <cmd>.name; if
// no @name is present, <cmd>.defaults is inserted right after the command.
// Each entry may hold several whitespace separated arguments.
func ExpandArgSets(args []string) []string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return args
	}

	out := make([]string, 0, len(args))
	out = append(out, args[:2]...)

	idx := 2
	set := "defaults"
	rest := args[2:]
	for i, a := range rest {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			out = append(out, rest[:i]...)
			rest = rest[i+1:]
			idx = len(out)
			break
		}
	}

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	out = append(out[:idx], append(expanded, rest...)...)
	log.Debugf("set=%s, args=%v", set, out)
	return out
}

// commandWriter returns where the command should print results.
func commandWriter(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// colorEnabled honors --color only when w is a terminal.
func colorEnabled(cmd *cli.Command, w io.Writer) bool {
	if !cmd.Bool("color") {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
