// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/pagectlgo/internal/config"
)

func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.IsSet("repeat") && c.Int("repeat") < 1 {
		return errors.New("--repeat must be at least 1")
	}
	if c.IsSet("interval") && c.Duration("interval") < 0 {
		return errors.New("--interval must not be negative")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	for _, v := range validOutputFlagValues {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", validOutputFlagValues)
}

func TTLValidator(value any) error {
	_, err := config.ParseTTL(value.(string))
	return err
}
