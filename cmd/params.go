// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// parseParams turns name=value pairs into statement parameters. A value that
// is valid JSON is bound with its JSON type, anything else as a string.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		v, ok := jsonValue(raw)
		if !ok {
			v = raw
		}
		params[name] = v
	}
	return params, nil
}

// jsonValue decodes raw as exactly one JSON value. Numbers stay json.Number
// so they are sent to the server digit for digit.
func jsonValue(raw string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

// splitStatements splits a script on semicolons that are outside quotes and
// drops empty statements and "--" comment lines.
func splitStatements(script string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if quote == 0 && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		for _, r := range line {
			switch {
			case quote != 0:
				if r == quote {
					quote = 0
				}
			case r == '\'' || r == '"' || r == '`':
				quote = r
			case r == ';':
				flush()
				continue
			}
			cur.WriteRune(r)
		}
		cur.WriteRune('\n')
	}
	flush()
	return out
}
