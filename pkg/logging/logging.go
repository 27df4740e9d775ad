// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"daml.com/x/elm-outdated/pkg/outdatedconfig"
)

const defaultLevel = "warn"

// InitLogging installs the default slog logger, writing text to w
func InitLogging(w io.Writer) error {
	logLevel, ok := os.LookupEnv(outdatedconfig.LogLevelEnvVar)
	if !ok || logLevel == "" {
		return initLogging(w, defaultLevel)
	}
	if err := initLogging(w, logLevel); err != nil {
		return fmt.Errorf("invalid value for '%s' env var: %w", outdatedconfig.LogLevelEnvVar, err)
	}
	return nil
}

func initLogging(w io.Writer, logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}

	slogHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}
