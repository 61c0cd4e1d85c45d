// Package domain defines the export resource types and ports
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatNDJSON is the only export format the pipeline produces
const FormatNDJSON = "ndjson"

// URIPrefix anchors every export URI handed to consumers
const URIPrefix = "historian://resources/export/"

// ResourceDescriptor describes one exported record batch
// The descriptor is what callers receive instead of inline records
type ResourceDescriptor struct {
	ResourceID string    `json:"resource_id"`
	URI        string    `json:"uri"`
	Format     string    `json:"format"`
	ItemCount  int       `json:"item_count"`
	ByteSize   int64     `json:"byte_size"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the resource is past its expiry at the given instant
func (d ResourceDescriptor) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

// Meta carries caller context recorded alongside an export
type Meta struct {
	CollectionID string `json:"collection_id,omitempty"`
}

// NewResourceID mints an export resource id: "export-" plus 16 hex chars
func NewResourceID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "export-" + hex[:16]
}

// URIFor returns the canonical URI for a resource id
func URIFor(id string) string { return URIPrefix + id + "." + FormatNDJSON }
