package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
)

// Comment statuses known to the export reader.
var knownStatuses = []string{"pending", "approved", "rejected", "flagged"}

const defaultStatus = "approved"

// ResolveFilter validates spec and turns it into a concrete query. When
// docketScope is set it narrows the docket set to that single docket.
func ResolveFilter(spec entities.FilterSpec, docketScope string) (entities.ResolvedFilter, error) {
	resolved := entities.ResolvedFilter{
		ContentContains:    strings.TrimSpace(spec.ContentContains),
		IncludeAttachments: spec.IncludeAttachments,
		MaxAttachmentBytes: spec.MaxAttachmentBytes,
	}

	statuses, err := resolveStatuses(spec)
	if err != nil {
		return entities.ResolvedFilter{}, err
	}
	resolved.Statuses = statuses

	if resolved.SubmittedFrom, err = parseBound(spec.SubmittedFrom, false); err != nil {
		return entities.ResolvedFilter{}, err
	}
	if resolved.SubmittedTo, err = parseBound(spec.SubmittedTo, true); err != nil {
		return entities.ResolvedFilter{}, err
	}
	if resolved.SubmittedFrom != nil && resolved.SubmittedTo != nil && resolved.SubmittedTo.Before(*resolved.SubmittedFrom) {
		return entities.ResolvedFilter{}, fmt.Errorf("%w: submitted_to is before submitted_from", domainerrors.ErrInvalidFilter)
	}

	dockets := dedupe(spec.DocketIDs, false)
	if scope := strings.TrimSpace(docketScope); scope != "" {
		if len(dockets) > 0 && !contains(dockets, scope) {
			return entities.ResolvedFilter{}, fmt.Errorf("%w: docket scope %s is outside docket_ids", domainerrors.ErrInvalidFilter, scope)
		}
		dockets = []string{scope}
	}
	resolved.DocketIDs = dockets

	mimeTypes := dedupe(spec.MIMETypes, true)
	for _, mimeType := range mimeTypes {
		major, minor, ok := strings.Cut(mimeType, "/")
		if !ok || major == "" || minor == "" || major == "*" {
			return entities.ResolvedFilter{}, fmt.Errorf("%w: malformed mime type %q", domainerrors.ErrInvalidFilter, mimeType)
		}
	}
	resolved.MIMETypes = mimeTypes

	if spec.MaxAttachmentBytes < 0 {
		return entities.ResolvedFilter{}, fmt.Errorf("%w: max_attachment_bytes must not be negative", domainerrors.ErrInvalidFilter)
	}
	return resolved, nil
}

// Matches reports whether comment belongs in the export.
func Matches(filter entities.ResolvedFilter, comment entities.SourceComment) bool {
	if !contains(filter.Statuses, comment.Status) {
		return false
	}
	if len(filter.DocketIDs) > 0 && !contains(filter.DocketIDs, comment.DocketID) {
		return false
	}
	if filter.SubmittedFrom != nil && comment.SubmittedAt.Before(*filter.SubmittedFrom) {
		return false
	}
	if filter.SubmittedTo != nil && comment.SubmittedAt.After(*filter.SubmittedTo) {
		return false
	}
	if filter.ContentContains != "" && !strings.Contains(strings.ToLower(comment.Content), strings.ToLower(filter.ContentContains)) {
		return false
	}
	return true
}

// AttachmentAllowed applies the MIME allowlist and size cap. Entries like
// "image/*" match a whole major type.
func AttachmentAllowed(filter entities.ResolvedFilter, attachment entities.SourceAttachment) bool {
	if filter.MaxAttachmentBytes > 0 && attachment.SizeBytes > filter.MaxAttachmentBytes {
		return false
	}
	if len(filter.MIMETypes) == 0 {
		return true
	}
	contentType := strings.ToLower(strings.TrimSpace(attachment.ContentType))
	if base, _, ok := strings.Cut(contentType, ";"); ok {
		contentType = strings.TrimSpace(base)
	}
	for _, allowed := range filter.MIMETypes {
		if allowed == contentType {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "/*"); ok && strings.HasPrefix(contentType, prefix+"/") {
			return true
		}
	}
	return false
}

func resolveStatuses(spec entities.FilterSpec) ([]string, error) {
	if spec.IncludeAllStatuses {
		return append([]string(nil), knownStatuses...), nil
	}
	statuses := dedupe(spec.Statuses, true)
	if len(statuses) == 0 {
		return []string{defaultStatus}, nil
	}
	for _, status := range statuses {
		if !contains(knownStatuses, status) {
			return nil, fmt.Errorf("%w: unknown status %q", domainerrors.ErrInvalidFilter, status)
		}
	}
	return statuses, nil
}

// parseBound accepts RFC 3339 timestamps or plain dates. A plain date used as
// an upper bound covers the whole day.
func parseBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		parsed = parsed.UTC()
		return &parsed, nil
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable date %q", domainerrors.ErrInvalidFilter, raw)
	}
	if upper {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, nil
}

func dedupe(values []string, lower bool) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
