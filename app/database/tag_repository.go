package database

import (
	"database/sql"
	"fmt"
)

type tagRepository struct {
	db *DB
}

func NewTagRepository(db *DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetBySlug(slug string) (*Tag, error) {
	var tag Tag
	err := r.db.QueryRow(`
		SELECT id, slug, name, wp_term_id
		FROM tags
		WHERE slug = ?
	`, slug).Scan(&tag.ID, &tag.Slug, &tag.Name, &tag.WPTermID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag by slug: %w", err)
	}
	return &tag, nil
}

// GetOrCreate returns the tag with the given slug, creating it on first use.
// wpTermID is only recorded at creation; 0 means no source term ID.
func (r *tagRepository) GetOrCreate(slug, name string, wpTermID int64) (*Tag, bool, error) {
	existing, err := r.GetBySlug(slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var termID *int64
	if wpTermID > 0 {
		termID = &wpTermID
	}

	var id int64
	err = r.db.QueryRow(`
		INSERT INTO tags (slug, name, wp_term_id)
		VALUES (?, ?, ?)
		RETURNING id
	`, slug, name, termID).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create tag %s: %w", slug, err)
	}

	return &Tag{ID: id, Slug: slug, Name: name, WPTermID: termID}, true, nil
}

func (r *tagRepository) GetTagCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get tag count: %w", err)
	}
	return count, nil
}
