package database

import "time"

// PostFields are the mutable fields written on every post upsert.
type PostFields struct {
	Title       string
	Slug        string
	ContentMD   string
	Excerpt     string
	Status      string
	AuthorID    int64
	PublishedAt *time.Time
}

// CommentFields are the mutable fields written on every comment upsert.
type CommentFields struct {
	AuthorName  string
	AuthorEmail string
	Content     string
	Status      string
}

// UserRepository resolves authors by login with get-or-create semantics.
type UserRepository interface {
	GetByLogin(login string) (*User, error)
	GetOrCreate(login, email, displayName string) (*User, bool, error)
}

// TagRepository resolves tags by slug with get-or-create semantics.
type TagRepository interface {
	GetBySlug(slug string) (*Tag, error)
	GetOrCreate(slug, name string, wpTermID int64) (*Tag, bool, error)
	GetTagCount() (int, error)
}

// PostRepository stores posts keyed by their WordPress post ID.
type PostRepository interface {
	GetByWPPostID(wpPostID int64) (*Post, error)
	Upsert(wpPostID int64, fields PostFields) (*Post, bool, error)
	AttachTag(postID, tagID int64) error
	GetTagSlugs(postID int64) ([]string, error)
	GetAllPosts() ([]Post, error)
	UpdateContent(postID int64, contentMD string) error
	SetFeaturedMedia(postID, mediaID int64) error
	GetPostCount() (int, error)
}

// CommentRepository stores comments keyed by their WordPress comment ID.
// SetCreatedAt exists because the schema stamps creation time automatically;
// migrated comments need it corrected to the source timestamp afterwards.
type CommentRepository interface {
	Upsert(wpCommentID, postID int64, parentID *int64, fields CommentFields) (*Comment, bool, error)
	SetCreatedAt(commentID int64, createdAt time.Time) error
	GetByPost(postID int64) ([]Comment, error)
	GetCommentCount() (int, error)
}

// MediaRepository stores media files on disk and records them in the
// database. FindByName is the dedup lookup used before fetching.
type MediaRepository interface {
	FindByName(name string) (*Media, error)
	Create(data []byte, filename string) (*Media, error)
	GetMediaCount() (int, error)
}
