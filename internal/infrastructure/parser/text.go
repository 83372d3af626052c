package parser

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanText strips any markup left in scraped text and collapses whitespace.
func cleanText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := html.UnescapeString(stripPolicy.Sanitize(raw))
	return strings.Join(strings.Fields(stripped), " ")
}

// parseDate reads the dates portals and blogs print. Korean dotted dates such as
// "2025.3.4." are rewritten to ISO form before dateparse sees them.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseIn(normalizeDottedDate(raw), time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func normalizeDottedDate(raw string) string {
	parts := strings.Split(strings.TrimSuffix(raw, "."), ".")
	if len(parts) != 3 {
		return raw
	}
	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return raw
		}
		ymd[i] = n
	}
	return fmt.Sprintf("%04d-%02d-%02d", ymd[0], ymd[1], ymd[2])
}

// resolveURL turns href into an absolute URL relative to base.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}
