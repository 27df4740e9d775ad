// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/Masterminds/semver/v3"
)

var ErrInvalidVersionFormat = errors.New("invalid version format")

// Version is a MAJOR.MINOR.PATCH triple. The zero value is 0.0.0.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Parse accepts exactly three dot-separated numeric components.
// Leading zeros, a "v" prefix, pre-release and build suffixes are all rejected.
func Parse(text string) (Version, error) {
	sv, err := semver.StrictNewVersion(text)
	if err != nil {
		return Version{}, fmt.Errorf("%w %q: %s", ErrInvalidVersionFormat, text, err.Error())
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return Version{}, fmt.Errorf("%w %q: pre-release and build metadata are not supported", ErrInvalidVersionFormat, text)
	}
	return New(sv.Major(), sv.Minor(), sv.Patch()), nil
}

// MustParse is like Parse but panics on error
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	return cmp.Compare(a.Patch, b.Patch)
}

func (v Version) Compare(o Version) int { return Compare(v, o) }
func (v Version) Less(o Version) bool   { return Compare(v, o) < 0 }
func (v Version) Equal(o Version) bool  { return v == o }

// NextMajor returns (major+1).0.0; ok is false when major is already at its maximum
func (v Version) NextMajor() (next Version, ok bool) {
	if v.Major == math.MaxUint64 {
		return Version{}, false
	}
	return New(v.Major+1, 0, 0), true
}

// Successor returns the smallest version greater than v; ok is false when v is the greatest version
func (v Version) Successor() (next Version, ok bool) {
	switch {
	case v.Patch < math.MaxUint64:
		return New(v.Major, v.Minor, v.Patch+1), true
	case v.Minor < math.MaxUint64:
		return New(v.Major, v.Minor+1, 0), true
	default:
		return v.NextMajor()
	}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) Semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, "", "")
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Max returns the greatest of vs, or nil when vs is empty
func Max(vs ...Version) *Version {
	if len(vs) == 0 {
		return nil
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if m.Less(v) {
			m = v
		}
	}
	return &m
}

// Ptr is a convenience for optional version fields
func Ptr(v Version) *Version {
	return &v
}

// EqualPtr reports whether two optional versions are both nil or both set and equal
func EqualPtr(a, b *Version) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func StringOr(v *Version, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return v.String()
}
