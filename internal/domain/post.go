package domain

import "time"

// Post is one scraped content record. Posts are never mutated after a source produces them.
type Post struct {
	Title       string     `json:"title" yaml:"title"`
	Content     string     `json:"content" yaml:"content"`
	Source      string     `json:"source" yaml:"source"`
	URL         string     `json:"url,omitempty" yaml:"url"`
	Author      string     `json:"author,omitempty" yaml:"author"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at"`
	Engagement  int        `json:"engagement,omitempty" yaml:"engagement"`
}

// Text joins title and content the way relevance matching reads them.
func (p Post) Text() string {
	return p.Title + " " + p.Content
}
