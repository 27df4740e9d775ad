// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package outdated

import (
	"context"
	"io"
	"log/slog"
	"os"

	"daml.com/x/elm-outdated/pkg/batch"
	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/registrysource"
	"daml.com/x/elm-outdated/pkg/report"
	"daml.com/x/elm-outdated/pkg/resolver"
	"daml.com/x/elm-outdated/pkg/schema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type ElmOutdated struct {
	Stderr, Stdout, Stdin *os.File
	ExitFn                func(exitCode int)
	// must contain at least one argument, namely the binary name, similar to os.Args
	OsArgs []string
}

// Exit calls ExitFn, or os.Exit when none is set
func (eo *ElmOutdated) Exit(exitCode int) {
	if eo.ExitFn == nil {
		os.Exit(exitCode)
	}
	eo.ExitFn(exitCode)
}

func (eo *ElmOutdated) SetOutputStreams(cmd *cobra.Command) {
	cmd.SetOut(eo.Stdout)
	cmd.SetErr(eo.Stderr)
	cmd.SetIn(eo.Stdin)

	lo.ForEach(cmd.Commands(), func(sub *cobra.Command, _ int) {
		eo.SetOutputStreams(sub)
	})
}

// NewLoader builds an index loader over the configured registry.
// A spinner is drawn on progress while a snapshot is being fetched, if progress is a terminal.
func NewLoader(config *outdatedconfig.Config, progress io.Writer) (batch.IndexLoader, error) {
	src, err := registrysource.New(config)
	if err != nil {
		return nil, err
	}
	slog.Debug("registry source", "source", src.String())

	return func(ctx context.Context, s schema.Schema) (idx *registry.Index, err error) {
		withSpinner(progress, " fetching "+s.ElmVersion()+" registry from "+src.String(), func() {
			idx, err = registrysource.Load(ctx, src, s)
		})
		return idx, err
	}, nil
}

// Check reads the manifest in dir and resolves every entry against the registry of its schema.
// Errors come back as coded RunErrors.
func Check(ctx context.Context, load batch.IndexLoader, dir string) (*manifest.Manifest, report.Report, error) {
	m, err := manifest.FindAndRead(dir)
	if err != nil {
		return nil, report.Report{}, outdatederrors.Standardize(err)
	}
	slog.Debug("manifest read", "path", m.Path, "entries", len(m.Entries))

	idx, err := load(ctx, m.Schema)
	if err != nil {
		return nil, report.Report{}, outdatederrors.Standardize(err)
	}
	return m, resolver.Resolve(m, idx), nil
}
