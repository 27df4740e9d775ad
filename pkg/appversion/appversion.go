// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package appversion

// To be populated at build-time, e.g.:
// go build -ldflags "-X 'daml.com/x/elm-outdated/pkg/appversion.Version=1.2.3'"
var (
	Version   string
	Build     string
	BuildDate string
)

type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Build     string `json:"build" yaml:"build"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}

func defaultUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func Get() VersionInfo {
	return VersionInfo{
		Version:   defaultUnknown(Version),
		Build:     defaultUnknown(Build),
		BuildDate: defaultUnknown(BuildDate),
	}
}

func GetVersion() string {
	return defaultUnknown(Version)
}
