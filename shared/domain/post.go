package domain

import (
	"strings"
	"time"
)

type Post struct {
	Id            PostId     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ContentHTML   string     `json:"content_html,omitempty"`
	Author        UserId     `json:"author"`
	Category      CategoryId `json:"category"`
	Tags          Tags       `json:"tags"`
	ViewCount     int64      `json:"view_count"`
	Comments      []Comment  `json:"comments"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Comments have no identity of their own; they are addressed by position.
type Comment struct {
	Author    UserId    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	Id        CategoryId `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

// PostPatch holds the fields an update may change. Nil means untouched.
type PostPatch struct {
	Title    *string
	Content  *string
	Category *CategoryId
	Tags     *Tags
}

func (p PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.Tags == nil
}

// Apply writes the set fields of the patch onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.Tags != nil {
		post.Tags = append(Tags(nil), (*p.Tags)...)
	}
}

// Clone returns a deep copy; slices are not shared with the receiver.
func (p Post) Clone() Post {
	c := p
	if p.Tags != nil {
		c.Tags = append(Tags{}, p.Tags...)
	}
	if p.Comments != nil {
		c.Comments = append([]Comment{}, p.Comments...)
	}
	return c
}

func (p Post) IsTemporary() bool {
	return strings.HasPrefix(p.Id, TempIdPrefix)
}

// ParseTags splits a comma delimited tag string, trims each tag and drops
// empties and duplicates while keeping first-seen order.
func ParseTags(raw string) Tags {
	tags := Tags{}
	seen := make(map[string]struct{})
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
