// Package records defines the immutable record type and batch filtering
package records

import (
	"strconv"
	"strings"
	"time"
)

// SenderKind classifies who produced a record
type SenderKind string

const (
	// SenderUser is a human account
	SenderUser SenderKind = "user"
	// SenderBot is an automated account
	SenderBot SenderKind = "bot"
	// SenderChannel is a broadcast identity posting as the collection itself
	SenderChannel SenderKind = "channel"
)

// Sender identifies the author of a record
type Sender struct {
	ID      int64      `json:"id"`
	Kind    SenderKind `json:"kind,omitempty"`
	Display string     `json:"display,omitempty"`
}

// Record is one historical message as delivered by the upstream source
// Fields are set once at the boundary and never mutated by the pipeline
type Record struct {
	ID             int64     `json:"id"`
	Date           time.Time `json:"date"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text,omitempty"`
	HasAttachment  bool      `json:"has_attachment"`
	AttachmentKind string    `json:"attachment_kind,omitempty"`
	Views          *int      `json:"views,omitempty"`
	Forwards       *int      `json:"forwards,omitempty"`
}

// isoLayouts are the ISO-8601 shapes upstream payloads have been seen to use
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the heterogeneous date representations upstream emits:
// epoch seconds (integer or fractional) and several ISO-8601 variants
// The result is always UTC
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &time.ParseError{Layout: "epoch or ISO-8601", Value: s, Message: ": empty"}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	}
	var lastErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
