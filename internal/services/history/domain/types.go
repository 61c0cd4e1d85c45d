// Package domain defines the history retrieval types and ports
package domain

import (
	"historian/internal/core/records"
	exportdom "historian/internal/services/export/domain"
)

// CollectionKind classifies an upstream collection
// The kind is decided once at the boundary and never re-derived downstream
type CollectionKind string

const (
	// KindUser is a direct conversation with a human account
	KindUser CollectionKind = "user"
	// KindBot is a direct conversation with an automated account
	KindBot CollectionKind = "bot"
	// KindGroup is a small multi-member conversation
	KindGroup CollectionKind = "group"
	// KindSupergroup is a large managed group
	KindSupergroup CollectionKind = "supergroup"
	// KindChannel is a broadcast collection
	KindChannel CollectionKind = "channel"
)

// Valid reports whether k is a known collection kind
func (k CollectionKind) Valid() bool {
	switch k {
	case KindUser, KindBot, KindGroup, KindSupergroup, KindChannel:
		return true
	}
	return false
}

// CollectionInfo describes a resolved collection
type CollectionInfo struct {
	ID          string         `json:"id"`
	Kind        CollectionKind `json:"kind"`
	Title       string         `json:"title,omitempty"`
	MemberCount int            `json:"member_count,omitempty"`
}

// FetchInput is one page request against a collection's history
// From and To accept epoch seconds or ISO-8601, matching upstream date shapes
type FetchInput struct {
	Collection    string   `json:"collection"               validate:"required"`
	PageSize      int      `json:"page_size,omitempty"`
	Cursor        string   `json:"cursor,omitempty"`
	Direction     string   `json:"direction,omitempty"      validate:"omitempty,oneof=asc desc"`
	Search        string   `json:"search,omitempty"`
	From          string   `json:"from,omitempty"`
	To            string   `json:"to,omitempty"`
	Kinds         []string `json:"kinds,omitempty"`
	SenderIDs     []int64  `json:"sender_ids,omitempty"     validate:"omitempty,dive,gt=0"`
	MinViews      *int     `json:"min_views,omitempty"`
	MaxViews      *int     `json:"max_views,omitempty"`
	DedupByIDOnly bool     `json:"dedup_by_id_only,omitempty"`
}

// ResolveInput names a collection to resolve
type ResolveInput struct {
	Identifier string `json:"identifier" validate:"required"`
}

// FetchResult is one page of processed history
// Either Records is inline or Export points at an NDJSON resource, never both
type FetchResult struct {
	Collection CollectionInfo                `json:"collection"`
	Records    []records.Record              `json:"records,omitempty"`
	Export     *exportdom.ResourceDescriptor `json:"export,omitempty"`
	Count      int                           `json:"count"`
	PageSize   int                           `json:"page_size"`
	Cursor     string                        `json:"cursor,omitempty"`
	HasMore    bool                          `json:"has_more"`
}
