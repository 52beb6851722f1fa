package database

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

type mediaRepository struct {
	db       *DB
	mediaDir string
}

// NewMediaRepository creates a media repository writing files under mediaDir.
func NewMediaRepository(db *DB, mediaDir string) MediaRepository {
	return &mediaRepository{db: db, mediaDir: mediaDir}
}

// FindByName looks up previously imported media by its original filename,
// falling back to a stored-path suffix match. Used to dedup before fetching.
func (r *mediaRepository) FindByName(name string) (*Media, error) {
	if name == "" {
		return nil, nil
	}

	media, err := r.scanOne(`
		SELECT id, path, original_name, size_bytes, created_at
		FROM media
		WHERE original_name = ?
		LIMIT 1
	`, name)
	if err != nil || media != nil {
		return media, err
	}

	return r.scanOne(`
		SELECT id, path, original_name, size_bytes, created_at
		FROM media
		WHERE path LIKE ?
		LIMIT 1
	`, "%/"+name)
}

// Create writes the file bytes under the media directory, bucketed by
// year/month like the original upload layout, and records the row.
func (r *mediaRepository) Create(data []byte, filename string) (*Media, error) {
	now := time.Now().UTC()
	relPath := path.Join("images", now.Format("2006/01"), filename)

	fullPath := filepath.Join(r.mediaDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(fullPath); err == nil {
		// A different file with this name already exists on disk; disambiguate
		// with a short content hash.
		sum := md5.Sum(data)
		ext := path.Ext(filename)
		base := filename[:len(filename)-len(ext)]
		filename = fmt.Sprintf("%s-%s%s", base, hex.EncodeToString(sum[:])[:6], ext)
		relPath = path.Join("images", now.Format("2006/01"), filename)
		fullPath = filepath.Join(r.mediaDir, filepath.FromSlash(relPath))
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}

	var id int64
	err := r.db.QueryRow(`
		INSERT INTO media (path, original_name, size_bytes, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, relPath, filename, int64(len(data)), now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to record media %s: %w", filename, err)
	}

	return &Media{
		ID:           id,
		Path:         relPath,
		OriginalName: filename,
		SizeBytes:    int64(len(data)),
		CreatedAt:    now,
	}, nil
}

func (r *mediaRepository) GetMediaCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM media").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get media count: %w", err)
	}
	return count, nil
}

func (r *mediaRepository) scanOne(query string, args ...any) (*Media, error) {
	var media Media
	err := r.db.QueryRow(query, args...).Scan(&media.ID, &media.Path,
		&media.OriginalName, &media.SizeBytes, &media.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find media: %w", err)
	}
	return &media, nil
}
