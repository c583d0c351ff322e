// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package render prints result rows and values as a table, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Format is an output format.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

// ParseFormat maps a flag value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", Table, JSON, YAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// Detect returns f, or Table when f is empty and out is a terminal and JSON
// otherwise.
func Detect(f Format, out *os.File) Format {
	if f != "" {
		return f
	}
	if out != nil && (isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
		return Table
	}
	return JSON
}

// Rows writes result rows. Table output uses one column per field, with
// record metadata (@rid, @type, ...) first.
func Rows(w io.Writer, f Format, rows []map[string]any) error {
	if f != Table {
		if rows == nil {
			rows = []map[string]any{}
		}
		return Value(w, f, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}

	cols := columns(rows)
	data := pterm.TableData{cols}
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := row[c]; ok {
				line[i] = cell(v)
			}
		}
		data = append(data, line)
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

// Value writes v as JSON or YAML. Table format falls back to YAML, which
// reads well for nested values.
func Value(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		b, err := yaml.Marshal(yamlValue(v))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
}

// yamlValue replaces json.Number with int64 or float64 so YAML prints plain
// numbers instead of strings.
func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = yamlValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlValue(e)
		}
		return out
	default:
		return v
	}
}

func columns(rows []map[string]any) []string {
	seen := map[string]bool{}
	var meta, plain []string
	for _, row := range rows {
		for k := range row {
			if seen[k] {
				continue
			}
			seen[k] = true
			if strings.HasPrefix(k, "@") {
				meta = append(meta, k)
			} else {
				plain = append(plain, k)
			}
		}
	}
	slices.Sort(meta)
	slices.Sort(plain)
	if i := slices.Index(meta, "@rid"); i > 0 {
		meta = append([]string{"@rid"}, slices.Delete(meta, i, i+1)...)
	}
	return append(meta, plain...)
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
