// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package versions

import (
	"fmt"
	"slices"
	"strings"

	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/resolver"
	"daml.com/x/elm-outdated/pkg/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
)

const (
	TagCurrent = "current"
	TagWanted  = "wanted"
	TagLatest  = "latest"
)

type Version struct {
	Version version.Version `json:"version" yaml:"version"`
	// InRange is set when the version satisfies the manifest constraint
	InRange bool     `json:"inRange,omitempty" yaml:"inRange,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func (v *Version) Current() bool {
	return lo.Contains(v.Tags, TagCurrent)
}

type Versions []*Version

// New lists every published version of name, ascending.
// When entry is non-nil its locked version and constraint are used to tag the list.
func New(idx *registry.Index, name string, entry *manifest.Entry) Versions {
	published := idx.Versions(name)
	r := make(Versions, len(published))
	for i, v := range published {
		r[i] = &Version{Version: v}
	}
	if len(r) == 0 {
		return r
	}

	if entry != nil {
		outcome := resolver.ResolveEntry(*entry, idx)
		if outcome.Current != nil {
			r.tag(*outcome.Current, TagCurrent)
		}
		if outcome.Wanted != nil {
			r.tag(*outcome.Wanted, TagWanted)
		}
		if entry.Constraint != nil {
			for _, v := range r {
				v.InRange = entry.Constraint.Satisfies(v.Version)
			}
		}
	}
	r.tag(*idx.MaxOverall(name), TagLatest)
	return r
}

func (v Versions) tag(target version.Version, tag string) {
	i, found := slices.BinarySearchFunc(v, target, func(e *Version, t version.Version) int {
		return version.Compare(e.Version, t)
	})
	if found {
		v[i].Tags = append(v[i].Tags, tag)
	}
}

// Last returns at most n of the highest versions, keeping the ascending order
func (v Versions) Last(n int) Versions {
	if n <= 0 || n >= len(v) {
		return v
	}
	return v[len(v)-n:]
}

func (v Versions) Table() string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Rows(lo.Map(v, func(row *Version, _ int) []string {
			indicator := ""

			text := row.Version.String()

			if len(row.Tags) > 0 {
				tags := strings.Join(row.Tags, ", ")
				text = fmt.Sprintf("%s\t(%s)", text, tags)
			}

			switch {
			case row.Current():
				indicator = "*"
				text = lipgloss.NewStyle().
					Foreground(lipgloss.Color("2")).
					Bold(true).
					Render(text)
			case !row.InRange:
				text = lipgloss.NewStyle().
					Faint(true).
					Italic(true).
					Render(text)
			}

			return []string{
				indicator,
				text,
			}
		})...).
		String()
}
