package records

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"historian/internal/platform/logger"

	"golang.org/x/text/cases"
)

// Processor applies filter criteria and deduplication to record batches
// Stages run in a fixed order so later, cheaper checks see a shrunk set:
// date range, text search, attachment, sender, views, dedup
type Processor struct {
	log logger.Logger
}

// NewProcessor constructs a Processor
func NewProcessor(log logger.Logger) *Processor {
	return &Processor{log: log}
}

var fold = cases.Fold()

// Process filters batch against p and drops duplicates
// The input slice is never modified. Record-local problems (a record whose
// date cannot be evaluated) drop that record with a warning, never the batch
func (pr *Processor) Process(batch []Record, p Params) []Record {
	out := batch
	if !p.empty() {
		out = pr.filterDate(out, p)
		out = filterSearch(out, p.Search)
		out = filterAttachment(out, p.Kinds)
		out = filterSender(out, p.SenderIDs)
		out = filterViews(out, p.MinViews, p.MaxViews)
	}
	if p.DedupByIDOnly {
		return DedupByID(out)
	}
	return DedupByContent(out)
}

// filterDate keeps records inside [From, To)
// Records with no usable date cannot be placed in the range and are dropped
func (pr *Processor) filterDate(in []Record, p Params) []Record {
	if p.From.IsZero() && p.To.IsZero() {
		return in
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if r.Date.IsZero() {
			pr.log.Warn().Int64("record_id", r.ID).Msg("record has no usable date, dropped from date-filtered batch")
			continue
		}
		if !p.From.IsZero() && r.Date.Before(p.From) {
			continue
		}
		if !p.To.IsZero() && !r.Date.Before(p.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// filterSearch keeps records whose text contains query, case-insensitively
// via Unicode case folding
func filterSearch(in []Record, query string) []Record {
	if query == "" {
		return in
	}
	needle := fold.String(query)
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if strings.Contains(fold.String(r.Text), needle) {
			out = append(out, r)
		}
	}
	return out
}

// filterAttachment keeps records matching the kind inclusion list
// A record without an attachment passes only when "text" is explicitly listed
func filterAttachment(in []Record, kinds []string) []Record {
	if len(kinds) == 0 {
		return in
	}
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if !r.HasAttachment {
			if want[KindText] {
				out = append(out, r)
			}
			continue
		}
		if want[r.AttachmentKind] {
			out = append(out, r)
		}
	}
	return out
}

// filterSender keeps records from the allow-listed sender ids
func filterSender(in []Record, ids []int64) []Record {
	if len(ids) == 0 {
		return in
	}
	allow := make(map[int64]bool, len(ids))
	for _, id := range ids {
		allow[id] = true
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if allow[r.Sender.ID] {
			out = append(out, r)
		}
	}
	return out
}

// filterViews keeps records whose view count falls inside [min, max]
// Records without a view count pass only an unbounded filter
func filterViews(in []Record, min, max *int) []Record {
	if min == nil && max == nil {
		return in
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if r.Views == nil {
			continue
		}
		if min != nil && *r.Views < *min {
			continue
		}
		if max != nil && *r.Views > *max {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ContentHash is a stable digest of the identity-bearing record fields
// Two records with the same hash are duplicates for traversal purposes
func ContentHash(r Record) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%d|%t", r.ID, r.Date.Unix(), r.Text, r.Sender.ID, r.HasAttachment)
	return hex.EncodeToString(h.Sum(nil))
}

// DedupByContent drops records whose content hash was already seen
// First occurrence wins
func DedupByContent(in []Record) []Record {
	seen := make(map[string]bool, len(in))
	out := make([]Record, 0, len(in))
	for _, r := range in {
		key := ContentHash(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// DedupByID is the faster variant when content-level detection is not needed
func DedupByID(in []Record) []Record {
	seen := make(map[int64]bool, len(in))
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
