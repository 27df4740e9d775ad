// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"strings"

	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/version"
	"github.com/package-url/packageurl-go"
	"github.com/samber/lo"
)

const PurlType = "elm"

// Outcome is the resolution result for one manifest entry.
// Custom outcomes are packages the registry does not know; their versions are always nil.
type Outcome struct {
	Package  string            `json:"package" yaml:"package"`
	Category manifest.Category `json:"category" yaml:"category"`
	Custom   bool              `json:"custom" yaml:"custom"`
	Current  *version.Version  `json:"current" yaml:"current"`
	Wanted   *version.Version  `json:"wanted" yaml:"wanted"`
	Latest   *version.Version  `json:"latest" yaml:"latest"`
}

// UpToDate is true when the locked version is already both the wanted and the latest one
func (o Outcome) UpToDate() bool {
	return !o.Custom &&
		o.Current != nil &&
		version.EqualPtr(o.Current, o.Wanted) &&
		version.EqualPtr(o.Current, o.Latest)
}

// PackageURL identifies the package, pinned to the current version when there is one
func (o Outcome) PackageURL() string {
	namespace, name := "", o.Package
	if i := strings.LastIndex(o.Package, "/"); i >= 0 {
		namespace, name = o.Package[:i], o.Package[i+1:]
	}
	v := ""
	if o.Current != nil {
		v = o.Current.String()
	}
	return packageurl.NewPackageURL(PurlType, namespace, name, v, nil, "").ToString()
}

// Report holds outcomes in manifest declaration order
type Report struct {
	Outcomes []Outcome
}

func New(outcomes ...Outcome) Report {
	return Report{Outcomes: outcomes}
}

func (r Report) Len() int {
	return len(r.Outcomes)
}

func (r Report) IsEmpty() bool {
	return len(r.Outcomes) == 0
}

// Outdated drops the rows that need no attention
func (r Report) Outdated() Report {
	return Report{Outcomes: lo.Filter(r.Outcomes, func(o Outcome, _ int) bool {
		return !o.UpToDate()
	})}
}
