// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"daml.com/x/elm-outdated/pkg/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

const (
	UpToDateMessage = "Everything is up to date!"

	CustomPlaceholder  = "custom"
	MissingPlaceholder = "-"
)

var Headers = []string{"Package", "Current", "Wanted", "Latest"}

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !lo.Contains(Formats, f) {
		return "", fmt.Errorf("output format not supported: %s", s)
	}
	return f, nil
}

// Row is the serialized form of an Outcome
type Row struct {
	Outcome `yaml:",inline"`
	Purl    string `json:"purl" yaml:"purl"`
}

func (r Report) Rows() []Row {
	return lo.Map(r.Outcomes, func(o Outcome, _ int) Row {
		return Row{Outcome: o, Purl: o.PackageURL()}
	})
}

// Write renders r to w in the given format
func (r Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatTable:
		_, err := fmt.Fprintln(w, r.Table())
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(r.Rows(), "", "    ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(r.Rows())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("output format not supported: %s", f)
	}
}

// Table renders the four column view, or the up-to-date message for an empty report
func (r Report) Table() string {
	if r.IsEmpty() {
		return UpToDateMessage
	}

	headerStyle := lipgloss.NewStyle().Underline(true).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(Headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(lo.Map(r.Outcomes, func(o Outcome, _ int) []string {
			return tableRow(o)
		})...).
		String()
}

func tableRow(o Outcome) []string {
	if o.Custom {
		return []string{o.Package, CustomPlaceholder, CustomPlaceholder, CustomPlaceholder}
	}
	return []string{
		o.Package,
		version.StringOr(o.Current, MissingPlaceholder),
		color.GreenString(version.StringOr(o.Wanted, MissingPlaceholder)),
		color.MagentaString(version.StringOr(o.Latest, MissingPlaceholder)),
	}
}
