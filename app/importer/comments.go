package importer

import (
	"log/slog"
	"sort"

	"github.com/ChrisB2025/wp-migrate/app/database"
	"github.com/ChrisB2025/wp-migrate/app/export"
)

// importComments rebuilds one post's comment thread. Comments are processed
// in ascending source-ID order, so a parent row exists by the time any child
// that references it is written. WordPress assigns comment IDs
// monotonically, which makes this ordering sufficient without a second pass.
// A comment whose declared parent is absent (forward reference or deleted
// parent) is promoted to a root comment, not treated as an error.
func (im *Importer) importComments(post *database.Post, comments []export.Comment) (int, error) {
	sorted := make([]export.Comment, len(comments))
	copy(sorted, comments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SourceID < sorted[j].SourceID
	})

	created := 0
	bySourceID := make(map[int]*database.Comment, len(sorted))

	for _, comment := range sorted {
		var parentID *int64
		if comment.ParentSourceID != 0 {
			if parent, ok := bySourceID[comment.ParentSourceID]; ok {
				parentID = &parent.ID
			} else if !im.options.ShouldPromoteOrphans() {
				slog.Warn("Comment parent not found, importing as root",
					"comment", comment.SourceID, "parent", comment.ParentSourceID)
			}
		}

		target, isNew, err := im.comments.Upsert(int64(comment.SourceID), post.ID, parentID, database.CommentFields{
			AuthorName:  comment.AuthorName,
			AuthorEmail: comment.AuthorEmail,
			Content:     comment.Body,
			Status:      string(comment.Status),
		})
		if err != nil {
			return created, err
		}

		// The schema stamps created_at with the import time; migrated
		// comments keep their original timestamp instead.
		if isNew && comment.CreatedAt != nil {
			if err := im.comments.SetCreatedAt(target.ID, comment.CreatedAt.UTC()); err != nil {
				return created, err
			}
		}

		bySourceID[comment.SourceID] = target
		if isNew {
			created++
		}
	}

	return created, nil
}
