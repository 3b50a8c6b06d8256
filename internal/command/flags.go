// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/pagectlgo/internal/config"
)

// NewGlobalFlags returns the output flags shared by every command. params[0]
// is the command name, used as the config namespace; params[1] is the config
// file path.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	ns, path := params[0], params[1]

	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(path)),
				yaml.YAML("color", altsrc.StringSourcer(path)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("PAGECTL_OUTPUT"),
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(path)),
				yaml.YAML("output", altsrc.StringSourcer(path)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of stats columns to sort by (url, count, age, size)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(path)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(path)),
				yaml.YAML("titles", altsrc.StringSourcer(path)),
			),
			Value: false,
		},
	}

	return
}

// NewTTLFlag constructs the --ttl flag. Its default comes from the config
// file (namespaced first) so that both bare seconds and duration strings are
// honored there; PAGECTL_TTL and the flag itself override it.
func NewTTLFlag() *cli.StringFlag {
	def := (config.DefaultTTLSeconds * time.Second).String()
	if ttl, err := config.TTL(); err == nil {
		def = ttl.String()
	} else {
		log.WithError(err).Warn("ignoring configured ttl")
	}

	return &cli.StringFlag{
		Name:  "ttl",
		Usage: "how long a fetched page stays fresh, in seconds or as a duration",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PAGECTL_TTL"),
		),
		Value: def,
		Validator: func(value string) error {
			return FlagValidators(value, TTLValidator)
		},
	}
}

// NewTimeoutFlag constructs the --timeout flag bounding each fetch.
func NewTimeoutFlag(params ...string) *cli.DurationFlag {
	flag := &cli.DurationFlag{
		Name:  "timeout",
		Usage: "per-request timeout; 0 waits indefinitely",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("PAGECTL_TIMEOUT"),
		),
		Value: 30 * time.Second,
	}

	if len(params) == 2 {
		flag.Sources.Chain = append(flag.Sources.Chain,
			yaml.YAML(params[0]+"."+flag.Name, altsrc.StringSourcer(params[1])),
			yaml.YAML(flag.Name, altsrc.StringSourcer(params[1])),
		)
	}

	return flag
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
