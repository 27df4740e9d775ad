// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"log/slog"

	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/report"
	"daml.com/x/elm-outdated/pkg/resolver"
	"daml.com/x/elm-outdated/pkg/schema"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// IndexLoader supplies the registry index of a schema
type IndexLoader func(ctx context.Context, s schema.Schema) (*registry.Index, error)

// Result is the outcome of checking one project. Exactly one of Report and Error is set.
type Result struct {
	Project Project
	Report  *report.Report
	Error   *outdatederrors.RunError
}

// Run checks every project, at most concurrency at a time.
//
// Each schema's index is loaded once, before any project is resolved, and then shared read-only.
// A failing project does not stop the others; only ctx cancellation does.
func Run(ctx context.Context, projects []Project, load IndexLoader, concurrency int) ([]Result, error) {
	indexes := map[schema.Schema]*registry.Index{}
	loadErrs := map[schema.Schema]*outdatederrors.RunError{}

	needed := lo.Uniq(lo.Map(projects, func(p Project, _ int) schema.Schema { return p.Schema }))
	for _, s := range needed {
		idx, err := load(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("failed to load registry", "schema", s.ElmVersion(), "err", err.Error())
			loadErrs[s] = outdatederrors.Standardize(err)
			continue
		}
		indexes[s] = idx
	}

	results := make([]Result, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, p := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = check(p, indexes[p.Schema], loadErrs[p.Schema])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func check(p Project, idx *registry.Index, loadErr *outdatederrors.RunError) Result {
	if loadErr != nil {
		return Result{Project: p, Error: loadErr}
	}

	m, err := p.Read()
	if err != nil {
		slog.Debug("skipping project", "dir", p.Dir, "err", err.Error())
		return Result{Project: p, Error: outdatederrors.Standardize(err)}
	}

	r := resolver.Resolve(m, idx)
	return Result{Project: p, Report: &r}
}

// Failed counts results carrying an error
func Failed(results []Result) int {
	return lo.CountBy(results, func(r Result) bool { return r.Error != nil })
}
