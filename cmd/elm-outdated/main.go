// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd"
	"daml.com/x/elm-outdated/pkg/outdated"
)

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	eo := outdated.ElmOutdated{
		Stderr: os.Stderr,
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
		ExitFn: os.Exit,
		OsArgs: os.Args,
	}
	root, err := cmd.RootCmd(ctx, &eo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
