// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/pagectlgo/internal/config"
	"github.com/staranto/pagectlgo/internal/fetch"
	"github.com/staranto/pagectlgo/internal/meta"
	"github.com/staranto/pagectlgo/internal/output"
	"github.com/staranto/pagectlgo/internal/tracker"
	"github.com/staranto/pagectlgo/internal/version"
)

// GetCommandAction is the action handler for the "get" subcommand. It fetches
// every URL --repeat times through a single Tracker, printing each page (or
// the --query match) and, with --stats, a summary of access counts.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return errors.New("at least one URL is required")
	}

	ttl, err := config.ParseTTL(cmd.String("ttl"))
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(ctx, cmd, urls)
	if err != nil {
		return err
	}

	t := tracker.New(fetcher, ttl)
	log.Debugf("ttl: %s", t.TTL())

	w := commandWriter(cmd)
	format := cmd.String("output")
	query := cmd.String("query")
	quiet := cmd.Bool("quiet")
	repeat := int(cmd.Int("repeat"))
	interval := cmd.Duration("interval")

	var errs []error
	for round := 0; round < repeat; round++ {
		if round > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(append(errs, ctx.Err())...)
			case <-time.After(interval):
			}
		}

		for _, u := range urls {
			body, err := t.Get(ctx, u)
			if err != nil {
				log.WithError(err).Debugf("round %d", round+1)
				errs = append(errs, err)
				continue
			}
			if quiet {
				continue
			}
			if err := output.Content(w, body, query, format); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", u, err))
			}
		}
	}

	if cmd.Bool("stats") {
		opts := output.Options{
			Format: format,
			Color:  colorEnabled(cmd, w),
			Titles: cmd.Bool("titles"),
			Sort:   cmd.String("sort"),
		}
		if err := output.Stats(w, t.Stats(), opts); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// newFetcher routes http(s) URLs to the HTTP fetcher and, only when one of
// the URLs needs it, s3 URLs to an S3 fetcher built from the AWS config chain.
func newFetcher(ctx context.Context, cmd *cli.Command, urls []string) (fetch.Fetcher, error) {
	ua := cmd.String("user-agent")
	if ua == "" {
		ua = "pagectl/" + version.Version
	}

	h := fetch.NewHTTP(
		fetch.WithTimeout(cmd.Duration("timeout")),
		fetch.WithUserAgent(ua),
	)
	mux := fetch.NewMux().
		Handle("http", h).
		Handle("https", h)

	if needsScheme(urls, "s3") {
		s3, err := fetch.NewS3FromConfig(ctx,
			fetch.WithProfile(cmd.String("aws-profile")),
			fetch.WithRegion(cmd.String("aws-region")),
		)
		if err != nil {
			return nil, err
		}
		mux.Handle("s3", s3)
	}

	return mux, nil
}

func needsScheme(urls []string, scheme string) bool {
	for _, raw := range urls {
		if u, err := url.Parse(raw); err == nil && strings.EqualFold(u.Scheme, scheme) {
			return true
		}
	}
	return false
}

// GetCommandBuilder constructs the cli.Command definition for the "get"
// command, wiring flags, metadata, and the action/validator handlers.
func GetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "get",
		Usage:     "fetch pages through the expiring cache",
		UsageText: `pagectl get [@set] [options] URL...`,
		Flags: []cli.Flag{
			NewTTLFlag(),
			NewTimeoutFlag("get", meta.Config.Source),
			&cli.IntFlag{
				Name:    "repeat",
				Aliases: []string{"n"},
				Usage:   "number of rounds over the URL list",
				Value:   1,
			},
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "pause between rounds",
			},
			&cli.BoolFlag{
				Name:    "stats",
				Aliases: []string{"S"},
				Usage:   "print access counts and cache state after fetching",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not print page content",
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "gjson path to extract from JSON pages",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			NameSpacedValueChainFlagFromConfigFile("get", meta.Config.Source, &cli.StringFlag{
				Name:    "user-agent",
				Usage:   "User-Agent header for http(s) requests",
				Sources: cli.NewValueSourceChain(cli.EnvVar("PAGECTL_USER_AGENT")),
			}),
			NameSpacedValueChainFlagFromConfigFile("get", meta.Config.Source, &cli.StringFlag{
				Name:    "aws-profile",
				Usage:   "shared config profile for s3:// URLs",
				Sources: cli.NewValueSourceChain(cli.EnvVar("PAGECTL_AWS_PROFILE")),
			}),
			NameSpacedValueChainFlagFromConfigFile("get", meta.Config.Source, &cli.StringFlag{
				Name:    "aws-region",
				Usage:   "region for s3:// URLs",
				Sources: cli.NewValueSourceChain(cli.EnvVar("PAGECTL_AWS_REGION")),
			}),
		},
		Action: GetCommandAction,
		Meta:   meta,
	}).Build()
}
