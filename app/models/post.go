package models

import (
	"sort"
	"strings"
)

// PostFilter selects posts by publication state.
type PostFilter string

const (
	FilterAll       PostFilter = "all"
	FilterPublished PostFilter = "published"
	FilterDrafts    PostFilter = "drafts"
)

// ParsePostFilter maps a status query value to a filter. Anything other than
// "published" or "drafts" lists every post.
func ParsePostFilter(s string) PostFilter {
	switch PostFilter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterPublished:
		return FilterPublished
	case FilterDrafts:
		return FilterDrafts
	default:
		return FilterAll
	}
}

// Match reports whether the post belongs to the filtered set.
func (f PostFilter) Match(p *Post) bool {
	switch f {
	case FilterPublished:
		return p.Published()
	case FilterDrafts:
		return !p.Published()
	default:
		return true
	}
}

// Published reports whether the post has a publication timestamp.
func (p *Post) Published() bool {
	return p.PublishedAt != nil
}

// SortRecent orders posts newest first. Posts created at the same instant keep
// id order so listings are deterministic.
func SortRecent(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
}
