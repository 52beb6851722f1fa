package database

import (
	"database/sql"
	"fmt"
	"time"
)

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByWPPostID(wpPostID int64) (*Post, error) {
	row := r.db.QueryRow(`
		SELECT id, wp_post_id, title, slug, content_md, excerpt, status,
		       author_id, featured_media_id, published_at, created_at, updated_at
		FROM posts
		WHERE wp_post_id = ?
	`, wpPostID)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by wp_post_id: %w", err)
	}
	return post, nil
}

// Upsert creates or updates the post identified by wpPostID. All mutable
// fields are rewritten on update; title or slug collisions with other posts
// are never used as a match signal, the source ID is authoritative.
func (r *postRepository) Upsert(wpPostID int64, fields PostFields) (*Post, bool, error) {
	existing, err := r.GetByWPPostID(wpPostID)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE posts
			SET title = ?, slug = ?, content_md = ?, excerpt = ?, status = ?,
			    author_id = ?, published_at = ?, updated_at = ?
			WHERE id = ?
		`, fields.Title, fields.Slug, fields.ContentMD, fields.Excerpt, fields.Status,
			fields.AuthorID, fields.PublishedAt, now, existing.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update post %d: %w", wpPostID, err)
		}
		updated := *existing
		applyPostFields(&updated, fields)
		updated.UpdatedAt = now
		return &updated, false, nil
	}

	var id int64
	err = r.db.QueryRow(`
		INSERT INTO posts (wp_post_id, title, slug, content_md, excerpt, status,
		                   author_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, wpPostID, fields.Title, fields.Slug, fields.ContentMD, fields.Excerpt,
		fields.Status, fields.AuthorID, fields.PublishedAt, now, now).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create post %d: %w", wpPostID, err)
	}

	post := &Post{ID: id, WPPostID: &wpPostID, CreatedAt: now, UpdatedAt: now}
	applyPostFields(post, fields)
	return post, true, nil
}

// AttachTag links a tag to a post. Attaching is additive and idempotent:
// existing links, including tags hand-added after a migration, survive.
func (r *postRepository) AttachTag(postID, tagID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO post_tags (post_id, tag_id)
		VALUES (?, ?)
		ON CONFLICT (post_id, tag_id) DO NOTHING
	`, postID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag %d to post %d: %w", tagID, postID, err)
	}
	return nil
}

func (r *postRepository) GetTagSlugs(postID int64) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT t.slug
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ?
		ORDER BY t.slug
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post tags: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan tag slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag slugs: %w", err)
	}
	return slugs, nil
}

func (r *postRepository) GetAllPosts() ([]Post, error) {
	rows, err := r.db.Query(`
		SELECT id, wp_post_id, title, slug, content_md, excerpt, status,
		       author_id, featured_media_id, published_at, created_at, updated_at
		FROM posts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

func (r *postRepository) UpdateContent(postID int64, contentMD string) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET content_md = ?, updated_at = ?
		WHERE id = ?
	`, contentMD, time.Now().UTC(), postID)
	if err != nil {
		return fmt.Errorf("failed to update post content: %w", err)
	}
	return nil
}

func (r *postRepository) SetFeaturedMedia(postID, mediaID int64) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET featured_media_id = ?, updated_at = ?
		WHERE id = ?
	`, mediaID, time.Now().UTC(), postID)
	if err != nil {
		return fmt.Errorf("failed to set featured media: %w", err)
	}
	return nil
}

func (r *postRepository) GetPostCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.WPPostID, &post.Title, &post.Slug,
		&post.ContentMD, &post.Excerpt, &post.Status, &post.AuthorID,
		&post.FeaturedMediaID, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func applyPostFields(post *Post, fields PostFields) {
	post.Title = fields.Title
	post.Slug = fields.Slug
	post.ContentMD = fields.ContentMD
	post.Excerpt = fields.Excerpt
	post.Status = fields.Status
	post.AuthorID = fields.AuthorID
	post.PublishedAt = fields.PublishedAt
}
