package models

import "time"

// ContentItem is the slice of a content row the moderation pipeline touches.
// All four content tables (articles, blog_posts, places, products) share it.
type ContentItem struct {
	ID        string
	AuthorID  string
	Title     string
	DeletedAt *time.Time
	CreatedAt time.Time
}

// Deleted reports whether the item is currently soft deleted
func (c *ContentItem) Deleted() bool {
	return c.DeletedAt != nil
}
