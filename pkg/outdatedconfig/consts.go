// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package outdatedconfig

import "time"

const (
	AppName        = "elm-outdated"
	ConfigFileName = "config.yaml"

	DefaultRegistry    = "https://package.elm-lang.org"
	DefaultCacheTTL    = time.Hour
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 8

	UserAgentPrefix = AppName
)
