// Package relevance decides which scraped posts are on-topic.
package relevance

import (
	"strings"

	"KBeautyBriefing/internal/domain"
)

// DefaultKeywords is the K-beauty vocabulary used when configuration supplies none.
var DefaultKeywords = []string{
	"korean", "k-beauty", "kbeauty", "skincare", "beauty", "cosmetics",
	"makeup", "serum", "essence", "toner", "moisturizer", "cleanser",
	"mask", "cream", "korean beauty", "korean skincare", "korean makeup",
	"korean cosmetics",
}

// Filter keeps posts whose title or content contains at least one keyword.
// Matching is a case-insensitive substring test; input order is preserved.
func Filter(posts []domain.Post, keywords []string) []domain.Post {
	needles := normalize(keywords)
	if len(posts) == 0 || len(needles) == 0 {
		return []domain.Post{}
	}

	kept := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if hits(strings.ToLower(post.Text()), needles) > 0 {
			kept = append(kept, post)
		}
	}
	return kept
}

// Score counts keyword hits scaled by 0.1 and capped at 1.0. It is advisory only.
func Score(post domain.Post, keywords []string) float64 {
	n := hits(strings.ToLower(post.Text()), normalize(keywords))
	score := float64(n) * 0.1
	if score > 1 {
		return 1
	}
	return score
}

func hits(text string, needles []string) int {
	count := 0
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			count++
		}
	}
	return count
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
