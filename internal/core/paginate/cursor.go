// Package paginate implements cursor-based traversal over upstream record pages
package paginate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Direction orders a traversal by record id
type Direction string

const (
	// Ascending walks from oldest to newest
	Ascending Direction = "asc"
	// Descending walks from newest to oldest
	Descending Direction = "desc"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool { return d == Ascending || d == Descending }

// Cursor is an immutable pagination position
// A cursor is replaced, never mutated, after each page
type Cursor struct {
	// OffsetID is the upstream record id to resume after
	OffsetID int64
	// OffsetDate anchors time ordering, zero when unknown
	OffsetDate time.Time
	// Direction is fixed for the lifetime of a traversal
	Direction Direction
	// CollectionID scopes the cursor to one collection
	CollectionID string
	// FetchedCount is the cumulative records retrieved so far
	FetchedCount int
}

// wireCursor is the canonical field map behind the encoded token
type wireCursor struct {
	Direction    string `json:"direction"`
	FetchedCount int    `json:"fetched_count"`
	OffsetID     int64  `json:"offset_id,omitempty"`
	OffsetDate   int64  `json:"offset_date,omitempty"`
	CollectionID string `json:"collection_id,omitempty"`
}

// Encode serializes the cursor to a URL-safe base64 token without padding
// Tokens are opaque to callers by contract
func (c Cursor) Encode() (string, error) {
	w := wireCursor{
		Direction:    string(c.Direction),
		FetchedCount: c.FetchedCount,
		OffsetID:     c.OffsetID,
		CollectionID: c.CollectionID,
	}
	if !c.OffsetDate.IsZero() {
		w.OffsetDate = c.OffsetDate.Unix()
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a token produced by Encode
// Padding is stripped before decode so padded and unpadded tokens both work
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	var w wireCursor
	if err := json.Unmarshal(raw, &w); err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	dir := Direction(w.Direction)
	if !dir.Valid() {
		return Cursor{}, fmt.Errorf("decode cursor: bad direction %q", w.Direction)
	}
	if w.FetchedCount < 0 {
		return Cursor{}, fmt.Errorf("decode cursor: negative fetched_count")
	}
	c := Cursor{
		OffsetID:     w.OffsetID,
		Direction:    dir,
		CollectionID: w.CollectionID,
		FetchedCount: w.FetchedCount,
	}
	if w.OffsetDate != 0 {
		c.OffsetDate = time.Unix(w.OffsetDate, 0).UTC()
	}
	return c, nil
}
