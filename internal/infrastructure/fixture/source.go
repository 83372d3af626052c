// Package fixture serves a bundled set of posts so the pipeline can run without network access.
package fixture

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

//go:embed posts.yaml
var embeddedPosts []byte

// Source implements ContentSource over a fixed post list.
type Source struct {
	posts []domain.Post
}

var _ ports.ContentSource = (*Source)(nil)

type document struct {
	Posts []domain.Post `yaml:"posts"`
}

// NewSource loads the embedded sample posts.
func NewSource() (*Source, error) {
	return Parse(embeddedPosts)
}

// Parse builds a Source from YAML of the form `posts: [...]`.
func Parse(raw []byte) (*Source, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fixture posts: %w", err)
	}
	return &Source{posts: doc.Posts}, nil
}

// FetchPosts returns a copy of the fixture posts.
func (s *Source) FetchPosts(ctx context.Context) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out, nil
}
