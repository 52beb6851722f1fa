package database

import (
	"database/sql"
	"fmt"
	"time"
)

type commentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) getByWPCommentID(wpCommentID int64) (*Comment, error) {
	var comment Comment
	err := r.db.QueryRow(`
		SELECT id, wp_comment_id, post_id, parent_id, author_name, author_email,
		       content, status, created_at
		FROM comments
		WHERE wp_comment_id = ?
	`, wpCommentID).Scan(&comment.ID, &comment.WPCommentID, &comment.PostID,
		&comment.ParentID, &comment.AuthorName, &comment.AuthorEmail,
		&comment.Content, &comment.Status, &comment.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment by wp_comment_id: %w", err)
	}
	return &comment, nil
}

// Upsert creates or updates the comment identified by wpCommentID. created_at
// is only stamped at creation; SetCreatedAt corrects it afterwards for
// migrated comments.
func (r *commentRepository) Upsert(wpCommentID, postID int64, parentID *int64, fields CommentFields) (*Comment, bool, error) {
	existing, err := r.getByWPCommentID(wpCommentID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE comments
			SET post_id = ?, parent_id = ?, author_name = ?, author_email = ?,
			    content = ?, status = ?
			WHERE id = ?
		`, postID, parentID, fields.AuthorName, fields.AuthorEmail,
			fields.Content, fields.Status, existing.ID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update comment %d: %w", wpCommentID, err)
		}
		updated := *existing
		updated.PostID = postID
		updated.ParentID = parentID
		updated.AuthorName = fields.AuthorName
		updated.AuthorEmail = fields.AuthorEmail
		updated.Content = fields.Content
		updated.Status = fields.Status
		return &updated, false, nil
	}

	now := time.Now().UTC()
	var id int64
	err = r.db.QueryRow(`
		INSERT INTO comments (wp_comment_id, post_id, parent_id, author_name,
		                      author_email, content, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, wpCommentID, postID, parentID, fields.AuthorName, fields.AuthorEmail,
		fields.Content, fields.Status, now).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create comment %d: %w", wpCommentID, err)
	}

	return &Comment{
		ID:          id,
		WPCommentID: &wpCommentID,
		PostID:      postID,
		ParentID:    parentID,
		AuthorName:  fields.AuthorName,
		AuthorEmail: fields.AuthorEmail,
		Content:     fields.Content,
		Status:      fields.Status,
		CreatedAt:   now,
	}, true, nil
}

func (r *commentRepository) SetCreatedAt(commentID int64, createdAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE comments
		SET created_at = ?
		WHERE id = ?
	`, createdAt, commentID)
	if err != nil {
		return fmt.Errorf("failed to set comment created_at: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByPost(postID int64) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT id, wp_comment_id, post_id, parent_id, author_name, author_email,
		       content, status, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at, id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		err := rows.Scan(&comment.ID, &comment.WPCommentID, &comment.PostID,
			&comment.ParentID, &comment.AuthorName, &comment.AuthorEmail,
			&comment.Content, &comment.Status, &comment.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}

func (r *commentRepository) GetCommentCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get comment count: %w", err)
	}
	return count, nil
}
