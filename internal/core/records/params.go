package records

import (
	"time"

	perr "historian/internal/platform/errors"
)

// KindText is the pseudo-kind that admits records without attachments
// through an attachment-kind filter
const KindText = "text"

// attachmentKinds is the closed set of recognized kind tokens
var attachmentKinds = map[string]bool{
	KindText:   true,
	"photo":    true,
	"video":    true,
	"document": true,
	"audio":    true,
	"voice":    true,
	"sticker":  true,
	"link":     true,
	"poll":     true,
}

// KnownKind reports whether token names a recognized attachment kind
func KnownKind(token string) bool { return attachmentKinds[token] }

// Params are the caller-supplied filter criteria for one traversal
type Params struct {
	// From/To bound the record date, zero means unbounded on that side
	From time.Time
	To   time.Time
	// Search is a case-insensitive substring over the text field
	Search string
	// Kinds is an attachment-kind inclusion list, empty means all
	Kinds []string
	// SenderIDs is an allow-list of sender ids, empty means all
	SenderIDs []int64
	// MinViews/MaxViews bound the view count, nil means unbounded
	MinViews *int
	MaxViews *int
	// DedupByIDOnly picks the faster id-only variant over content hashing
	DedupByIDOnly bool
}

// Validate rejects criteria that can never match before any fetch happens
func (p Params) Validate() error {
	if !p.From.IsZero() && !p.To.IsZero() && !p.From.Before(p.To) {
		return perr.WithField(
			perr.Validationf("date range start %s is not before end %s",
				p.From.Format(time.RFC3339), p.To.Format(time.RFC3339)),
			"from",
		)
	}
	for _, k := range p.Kinds {
		if !KnownKind(k) {
			return perr.WithField(perr.Validationf("unknown attachment kind %q", k), "kinds")
		}
	}
	for _, id := range p.SenderIDs {
		if id <= 0 {
			return perr.WithField(perr.Validationf("sender id must be positive, got %d", id), "sender_ids")
		}
	}
	if p.MinViews != nil && *p.MinViews < 0 {
		return perr.WithField(perr.Validationf("min views must not be negative"), "min_views")
	}
	if p.MaxViews != nil && *p.MaxViews < 0 {
		return perr.WithField(perr.Validationf("max views must not be negative"), "max_views")
	}
	if p.MinViews != nil && p.MaxViews != nil && *p.MinViews > *p.MaxViews {
		return perr.WithField(perr.Validationf("min views %d exceeds max views %d", *p.MinViews, *p.MaxViews), "min_views")
	}
	return nil
}

// empty reports whether no filter stage has anything to do
func (p Params) empty() bool {
	return p.From.IsZero() && p.To.IsZero() && p.Search == "" &&
		len(p.Kinds) == 0 && len(p.SenderIDs) == 0 &&
		p.MinViews == nil && p.MaxViews == nil
}
