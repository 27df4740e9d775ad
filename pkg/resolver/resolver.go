// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/report"
	"github.com/samber/lo"
)

// Resolve computes current, wanted and latest for every manifest entry, in declaration order.
//
// Each entry is resolved on its own against idx; nothing is propagated between packages.
// Resolve does not modify either argument, so one index may be shared by concurrent callers.
func Resolve(m *manifest.Manifest, idx *registry.Index) report.Report {
	return report.New(lo.Map(m.Entries, func(e manifest.Entry, _ int) report.Outcome {
		return ResolveEntry(e, idx)
	})...)
}

func ResolveEntry(e manifest.Entry, idx *registry.Index) report.Outcome {
	if !idx.Has(e.Name) {
		return report.Outcome{Package: e.Name, Category: e.Category, Custom: true}
	}

	outcome := report.Outcome{
		Package:  e.Name,
		Category: e.Category,
		Current:  e.Current,
		Latest:   idx.MaxOverall(e.Name),
	}
	// an unsatisfiable constraint is reported as no wanted version
	if e.Constraint != nil && !e.Constraint.IsEmpty() {
		outcome.Wanted = idx.MaxSatisfying(e.Name, *e.Constraint)
	}
	return outcome
}
