// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	cmd "daml.com/x/elm-outdated/cmd/elm-outdated/cmd"
	"daml.com/x/elm-outdated/pkg/outdated"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/utils"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// format renders the command tree into one file per command, plus an index page
type format struct {
	ext      string
	generate func(root *cobra.Command, dir string) error
	index    func(w io.Writer, pages []string) error
}

var formats = map[string]format{
	"md": {
		ext: ".md",
		generate: func(root *cobra.Command, dir string) error {
			return doc.GenMarkdownTreeCustom(root, dir, frontMatter, func(s string) string { return s })
		},
		index: func(w io.Writer, pages []string) error {
			if _, err := io.WriteString(w, frontMatter("index.md")); err != nil {
				return err
			}
			for _, p := range pages {
				if _, err := fmt.Fprintf(w, "- [%s](%s.md)\n", title(p), p); err != nil {
					return err
				}
			}
			return nil
		},
	},
	"rst": {
		ext: ".rst",
		generate: func(root *cobra.Command, dir string) error {
			return doc.GenReSTTreeCustom(root, dir, rstHeader, func(name, ref string) string {
				return fmt.Sprintf(":ref:`%s <%s>`", name, ref)
			})
		},
		index: func(w io.Writer, pages []string) error {
			if _, err := io.WriteString(w, ".. toctree::\n   :maxdepth: 2\n   :caption: CLI Reference:\n\n"); err != nil {
				return err
			}
			for _, p := range pages {
				if _, err := fmt.Fprintf(w, "   %s\n", p); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

func main() {
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelFn()

	if err := docsCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func docsCmd() *cobra.Command {
	var formatName string

	c := &cobra.Command{
		Use:   "docs <output dir>",
		Short: "generate the elm-outdated CLI reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			f, ok := formats[formatName]
			if !ok {
				return fmt.Errorf("unsupported format %q, expected one of %s", formatName, strings.Join(lo.Keys(formats), ", "))
			}
			c.SilenceUsage = true

			if err := generate(c.Context(), args[0], f); err != nil {
				return err
			}
			c.Printf("reference generated in %s\n", args[0])
			return nil
		},
	}

	c.Flags().StringVar(&formatName, "format", "md", "md or rst")
	return c
}

func generate(ctx context.Context, dir string, f format) error {
	home, deleteFn, err := utils.MkdirTemp("", "")
	if err != nil {
		return err
	}
	defer func() { _ = deleteFn() }()

	// defaults shown in the reference must not depend on the local setup
	if err := os.Setenv(outdatedconfig.HomeEnvVar, home); err != nil {
		return err
	}
	if err := os.Unsetenv(outdatedconfig.RegistryEnvVar); err != nil {
		return err
	}

	root, err := cmd.RootCmd(ctx, &outdated.ElmOutdated{OsArgs: []string{cmd.Name}})
	if err != nil {
		return err
	}
	root.DisableAutoGenTag = true
	lo.ForEach(root.Commands(), func(c *cobra.Command, _ int) { c.Hidden = false })

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := f.generate(root, dir); err != nil {
		return err
	}
	return writeIndex(dir, f)
}

func writeIndex(dir string, f format) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	indexName := "index" + f.ext
	pages := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		name := e.Name()
		return strings.TrimSuffix(name, f.ext), !e.IsDir() && filepath.Ext(name) == f.ext && name != indexName
	})
	slices.Sort(pages)

	out, err := os.Create(filepath.Join(dir, indexName))
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	return f.index(out, pages)
}

func title(page string) string {
	return strings.ReplaceAll(page, "_", " ")
}

// Jekyll front matter
func frontMatter(filename string) string {
	page := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\nlayout: default\ntitle: %s\nparent: elm-outdated CLI reference\n---\n\n", title(page))
}

func rstHeader(filename string) string {
	t := title(strings.TrimSuffix(filepath.Base(filename), ".rst"))
	return fmt.Sprintf("%s\n%s\n\n", t, strings.Repeat("=", len(t)))
}
