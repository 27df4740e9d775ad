// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/report"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

type serializedResult struct {
	Dir      string                   `json:"dir" yaml:"dir"`
	Manifest string                   `json:"manifest" yaml:"manifest"`
	Outcomes []report.Row             `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Error    *outdatederrors.RunError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Write renders results relative to root. Up-to-date rows are hidden unless all is set.
func Write(w io.Writer, root string, results []Result, f report.Format, all bool) error {
	view := func(r *report.Report) report.Report {
		if all {
			return *r
		}
		return r.Outdated()
	}

	switch f {
	case report.FormatTable:
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, color.New(color.Bold).Sprint(relative(root, res.Project.ManifestPath)))
			if res.Error != nil {
				fmt.Fprintln(w, color.RedString(res.Error.Error()))
				continue
			}
			fmt.Fprintln(w, view(res.Report).Table())
		}
		return nil

	case report.FormatJSON, report.FormatYAML:
		out := lo.Map(results, func(res Result, _ int) serializedResult {
			s := serializedResult{
				Dir:      relative(root, res.Project.Dir),
				Manifest: filepath.Base(res.Project.ManifestPath),
				Error:    res.Error,
			}
			if res.Report != nil {
				s.Outcomes = view(res.Report).Rows()
			}
			return s
		})

		var data []byte
		var err error
		if f == report.FormatJSON {
			data, err = json.MarshalIndent(out, "", "    ")
			data = append(data, '\n')
		} else {
			data, err = yaml.Marshal(out)
		}
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	default:
		return fmt.Errorf("output format not supported: %s", f)
	}
}

func relative(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
