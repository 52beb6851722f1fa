package database

import "time"

// User is a blog author. Login is the durable natural key; migrated users
// keep their WordPress login.
type User struct {
	ID          int64
	Login       string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Tag is keyed by slug. WPTermID is only set for migrated tags.
type Tag struct {
	ID       int64
	Slug     string
	Name     string
	WPTermID *int64
}

// Post is a blog post. WPPostID is the original WordPress post ID, set only
// for migrated content, and unique when present: re-import locates and
// updates the row instead of duplicating it.
type Post struct {
	ID              int64
	WPPostID        *int64
	Title           string
	Slug            string
	ContentMD       string
	Excerpt         string
	Status          string
	AuthorID        int64
	FeaturedMediaID *int64
	PublishedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Comment is a blog comment. Parent edges form a forest rooted at each post;
// a nil ParentID marks a root comment.
type Comment struct {
	ID          int64
	WPCommentID *int64
	PostID      int64
	ParentID    *int64
	AuthorName  string
	AuthorEmail string
	Content     string
	Status      string
	CreatedAt   time.Time
}

// Media is a stored media file. Path is relative to the media directory;
// OriginalName is the filename the file had at its source and is the dedup
// key for re-imports.
type Media struct {
	ID           int64
	Path         string
	OriginalName string
	SizeBytes    int64
	CreatedAt    time.Time
}

// URL returns the public location media references are rewritten to.
func (m *Media) URL() string {
	return "/media/" + m.Path
}
