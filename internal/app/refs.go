package app

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Blob references inside content documents are matched as strings against
// stored access references. Everything funnels through one canonical form,
// "/files/<id>", so absolute URLs, missing leading slashes, and trailing
// slashes cannot produce silent reachability misses.

// referenceExtractor returns the raw reference strings a decoded content
// document embeds.
type referenceExtractor func(doc map[string]any) []string

// referenceExtractors is keyed by the document's "type" discriminator.
// A type with no entry contributes zero references: unknown shapes are
// treated as reference-free, so their assets are eligible for collection.
// Adding a content type that carries media is a one-line registration here.
var referenceExtractors = map[string]referenceExtractor{
	"slider":           arrayFieldExtractor("images", "videos"),
	"escalation-board": arrayFieldExtractor("images"),
}

func arrayFieldExtractor(fields ...string) referenceExtractor {
	return func(doc map[string]any) []string {
		var refs []string
		for _, field := range fields {
			items, ok := doc[field].([]any)
			if !ok {
				continue
			}
			for _, item := range items {
				if s, ok := item.(string); ok {
					refs = append(refs, s)
				}
			}
		}
		return refs
	}
}

// ExtractReferences returns the set of canonical blob references a content
// document embeds. Malformed documents and unknown document types yield an
// empty set; extraction never fails.
func ExtractReferences(contentDoc string) map[string]struct{} {
	refs := make(map[string]struct{})

	var doc map[string]any
	if err := json.Unmarshal([]byte(contentDoc), &doc); err != nil {
		return refs
	}

	docType, _ := doc["type"].(string)
	extract, ok := referenceExtractors[docType]
	if !ok {
		return refs
	}

	for _, raw := range extract(doc) {
		if ref, ok := CanonicalizeReference(raw); ok {
			refs[ref] = struct{}{}
		}
	}
	return refs
}

// CanonicalizeReference reduces any accepted spelling of a blob reference
// (id path, path without leading slash, absolute URL, trailing slash) to
// the canonical "/files/<id>" form. Strings that do not point at a stored
// blob report ok = false.
func CanonicalizeReference(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if strings.Contains(s, "://") {
		parsed, err := url.Parse(s)
		if err != nil {
			return "", false
		}
		s = parsed.Path
	}

	s = strings.TrimSuffix(s, "/")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}

	const marker = "/files/"
	idx := strings.LastIndex(s, marker)
	if idx < 0 {
		return "", false
	}
	idPart := s[idx+len(marker):]
	if idPart == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(idPart, 10, 64); err != nil {
		return "", false
	}
	return marker + idPart, true
}
