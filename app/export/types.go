package export

import "time"

// Document is the parsed form of one WXR export. It lives for the duration of
// a single migration run and is discarded afterwards.
type Document struct {
	Title   string
	Link    string
	Authors []Author
	Tags    []Tag
	Posts   []Post
}

type Author struct {
	Login       string
	Email       string
	DisplayName string
}

type Tag struct {
	TermID int
	Slug   string
	Name   string
}

type PostStatus string

const (
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
	StatusScheduled PostStatus = "scheduled"
)

// Post is one exported blog post. SourceID is the WordPress post ID and is
// the stable identity key across re-runs.
type Post struct {
	SourceID    int
	Title       string
	Slug        string
	Body        string
	Excerpt     string
	Status      PostStatus
	AuthorLogin string
	PublishedAt *time.Time
	TagSlugs    []string
	Comments    []Comment
}

type CommentStatus string

const (
	CommentApproved CommentStatus = "approved"
	CommentPending  CommentStatus = "pending"
	CommentSpam     CommentStatus = "spam"
)

// Comment is one exported comment. ParentSourceID is 0 for root comments.
type Comment struct {
	SourceID       int
	ParentSourceID int
	AuthorName     string
	AuthorEmail    string
	Body           string
	Status         CommentStatus
	CreatedAt      *time.Time
}
