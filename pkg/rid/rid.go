// Copyright (c) 2025 The arcadedb-cli Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package rid implements the ArcadeDB record identifier, a two-part reference
// to a stored record written as #<bucket>:<position>.
//
// RecordID values are plain comparable structs. They encode to and decode from
// their canonical text form both in memory and on the wire, so a RecordID can be
// used directly as a field of a row type:
//
//	type Movie struct {
//		ID    rid.RecordID `json:"@rid"`
//		Title string       `json:"title"`
//	}
package rid

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Pattern is the textual form every RecordID must match.
const Pattern = "#<bucket-identifier>:<record-position>"

// Null is the conventional "no record" identifier, #-1:-1.
var Null = RecordID{Bucket: -1, Position: -1}

// RecordID identifies a record by its bucket and its position in that bucket.
type RecordID struct {
	Bucket   int32
	Position int64
}

// New returns the RecordID for the given bucket and position.
func New(bucket int32, position int64) RecordID {
	return RecordID{Bucket: bucket, Position: position}
}

// IsNull reports whether id is the #-1:-1 identifier.
func (id RecordID) IsNull() bool {
	return id == Null
}

// String returns the canonical form #<bucket>:<position>.
func (id RecordID) String() string {
	return "#" + strconv.FormatInt(int64(id.Bucket), 10) + ":" + strconv.FormatInt(id.Position, 10)
}

// FormatError reports text that is not a valid RecordID.
// Err is set when the shape was right but a number failed to parse.
type FormatError struct {
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid RecordID %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("invalid RecordID %q, expected format %s", e.Input, Pattern)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Parse decodes text of the exact form #<int32>:<int64>.
func Parse(text string) (RecordID, error) {
	rest, ok := strings.CutPrefix(text, "#")
	if !ok {
		return RecordID{}, &FormatError{Input: text}
	}
	bucketText, positionText, ok := strings.Cut(rest, ":")
	if !ok || bucketText == "" || positionText == "" ||
		strings.ContainsAny(bucketText, "#:") || strings.ContainsAny(positionText, "#:") {
		return RecordID{}, &FormatError{Input: text}
	}

	bucket, err := strconv.ParseInt(bucketText, 10, 32)
	if err != nil {
		return RecordID{}, &FormatError{Input: text, Err: err}
	}
	position, err := strconv.ParseInt(positionText, 10, 64)
	if err != nil {
		return RecordID{}, &FormatError{Input: text, Err: err}
	}
	return RecordID{Bucket: int32(bucket), Position: position}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(text string) RecordID {
	id, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return id
}

// MarshalText implements encoding.TextMarshaler.
func (id RecordID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *RecordID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON encodes the identifier as a JSON string.
func (id RecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts only a JSON string; null leaves id unchanged.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("invalid type %s, expected a RecordID with format %s", data, Pattern)
	}
	return id.UnmarshalText([]byte(text))
}
