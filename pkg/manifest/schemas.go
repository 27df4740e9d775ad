// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"

	"daml.com/x/elm-outdated/pkg/constraint"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/version"
)

const (
	applicationType = "application"
	packageType     = "package"

	dependenciesField     = "dependencies"
	testDependenciesField = "test-dependencies"
	directField           = "direct"
	indirectField         = "indirect"
	lockedField           = "locked"
	typeField             = "type"
)

type section struct {
	table    document
	category Category
}

// newEntries reads an elm.json document.
//
// Applications pin exact versions in dependencies.{direct,indirect} and
// test-dependencies.{direct,indirect}; packages declare ranges in dependencies and
// test-dependencies. An optional "locked" table supplies the current version of ranged entries.
func newEntries(doc document, file string) ([]Entry, error) {
	typ, ok, err := doc.str(typeField, file)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%q", typeField), Err: errors.New("missing required field")}
	}

	var sections []section
	switch typ {
	case applicationType:
		sections, err = applicationSections(doc, file)
	case packageType:
		sections, err = packageSections(doc, file)
	default:
		return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%q: %q", typeField, typ), Err: fmt.Errorf("expected %q or %q", applicationType, packageType)}
	}
	if err != nil {
		return nil, err
	}

	locked, err := lockedVersions(doc, file)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, sec := range sections {
		pairs, err := sec.table.pairs(file)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			e, err := newEntry(p, sec.category, file)
			if err != nil {
				return nil, err
			}
			if e.Current == nil {
				if v, ok := locked[p.name]; ok {
					e.Current = version.Ptr(v)
				}
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func applicationSections(doc document, file string) ([]section, error) {
	deps, err := doc.requiredObject(dependenciesField, file)
	if err != nil {
		return nil, err
	}
	direct, err := deps.requiredObject(directField, file)
	if err != nil {
		return nil, err
	}
	indirect, err := deps.requiredObject(indirectField, file)
	if err != nil {
		return nil, err
	}
	sections := []section{{direct, Direct}, {indirect, Indirect}}

	testDeps, ok, err := doc.object(testDependenciesField, file)
	if err != nil {
		return nil, err
	}
	if ok {
		testDirect, _, err := testDeps.object(directField, file)
		if err != nil {
			return nil, err
		}
		testIndirect, _, err := testDeps.object(indirectField, file)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section{testDirect, DirectTest}, section{testIndirect, IndirectTest})
	}
	return sections, nil
}

func packageSections(doc document, file string) ([]section, error) {
	deps, err := doc.requiredObject(dependenciesField, file)
	if err != nil {
		return nil, err
	}
	testDeps, _, err := doc.object(testDependenciesField, file)
	if err != nil {
		return nil, err
	}
	return []section{{deps, Direct}, {testDeps, DirectTest}}, nil
}

func lockedVersions(doc document, file string) (map[string]version.Version, error) {
	table, ok, err := doc.object(lockedField, file)
	if err != nil || !ok {
		return nil, err
	}
	pairs, err := table.pairs(file)
	if err != nil {
		return nil, err
	}

	locked := make(map[string]version.Version, len(pairs))
	for _, p := range pairs {
		v, err := version.Parse(p.text)
		if err != nil {
			return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%s.%q: %q", lockedField, p.name, p.text), Err: err}
		}
		locked[p.name] = v
	}
	return locked, nil
}

// newEntry: an exact version is a lock within the compatible range; anything else is a constraint
func newEntry(p pair, category Category, file string) (Entry, error) {
	if v, err := version.Parse(p.text); err == nil {
		c := constraint.Compatible(v)
		return Entry{Name: p.name, Category: category, Current: version.Ptr(v), Constraint: &c}, nil
	}

	c, err := constraint.Parse(p.text, schema.New)
	if err != nil {
		return Entry{}, &ParseError{File: file, Fragment: fmt.Sprintf("%q: %q", p.name, p.text), Err: err}
	}
	return Entry{Name: p.name, Category: category, Constraint: &c}, nil
}

// oldEntries reads an elm-package.json document, whose single dependencies table maps
// names to exact versions or, as written by elm-package itself, to ranges.
func oldEntries(doc document, file string) ([]Entry, error) {
	deps, err := doc.requiredObject(dependenciesField, file)
	if err != nil {
		return nil, err
	}
	pairs, err := deps.pairs(file)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(pairs))
	for _, p := range pairs {
		c, err := constraint.Parse(p.text, schema.Old)
		if err != nil {
			return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%q: %q", p.name, p.text), Err: err}
		}
		e := Entry{Name: p.name, Category: Direct, Constraint: &c}
		if v, err := version.Parse(p.text); err == nil {
			e.Current = version.Ptr(v)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
