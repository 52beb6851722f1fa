package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ChrisB2025/wp-migrate/app/config"
	"github.com/ChrisB2025/wp-migrate/app/database"
	"github.com/ChrisB2025/wp-migrate/app/export"
	"github.com/ChrisB2025/wp-migrate/app/markup"
	"github.com/ChrisB2025/wp-migrate/app/media"
)

// Summary reports what one import run did.
type Summary struct {
	TagsCreated     int
	PostsCreated    int
	PostsUpdated    int
	PostsFailed     int
	CommentsCreated int
}

// Importer loads a parsed export document into the store. Runs are
// idempotent: entities are matched by their durable source IDs and updated
// in place, never duplicated, so re-running against the same or an updated
// export is always safe.
type Importer struct {
	users      database.UserRepository
	tags       database.TagRepository
	posts      database.PostRepository
	comments   database.CommentRepository
	transcoder *markup.Transcoder
	resolver   *media.Resolver
	options    *config.Options
}

// New creates an importer. mediaResolver may be nil to skip media
// resolution entirely.
func New(users database.UserRepository, tags database.TagRepository,
	posts database.PostRepository, comments database.CommentRepository,
	mediaResolver *media.Resolver, options *config.Options) *Importer {
	return &Importer{
		users:      users,
		tags:       tags,
		posts:      posts,
		comments:   comments,
		transcoder: markup.NewTranscoder(),
		resolver:   mediaResolver,
		options:    options,
	}
}

// Run imports the document. Authors and tags are resolved up front, so a
// store failure there aborts the run before any post is written. Posts are
// then imported one at a time; a single post's failure is logged and
// skipped while the run continues. Cancellation stops before the next
// post's writes begin.
func (im *Importer) Run(ctx context.Context, doc *export.Document) (*Summary, error) {
	summary := &Summary{}
	res := newResolution(im.users, im.tags)

	for _, author := range doc.Authors {
		if _, err := res.resolveAuthor(author); err != nil {
			return summary, err
		}
	}
	for _, tag := range doc.Tags {
		if _, err := res.resolveTag(tag); err != nil {
			return summary, err
		}
	}
	summary.TagsCreated = res.tagsCreated

	for _, post := range doc.Posts {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err := im.importPost(ctx, res, post, summary); err != nil {
			if errors.Is(err, ErrResolution) {
				return summary, err
			}
			summary.PostsFailed++
			slog.Warn("Post import failed, skipping", "post_id", post.SourceID,
				"title", post.Title, "error", err)
		}
	}

	return summary, nil
}

// importPost is one unit of work: everything for a post commits before the
// next post starts, and a mid-post failure skips only this post.
func (im *Importer) importPost(ctx context.Context, res *resolution, post export.Post, summary *Summary) error {
	author := res.cachedAuthor(post.AuthorLogin)
	if author == nil {
		// Creator unknown to the export's author table; fall back to the
		// configured default author.
		var err error
		author, err = res.resolveAuthor(export.Author{
			Login:       im.options.DefaultAuthor.Login,
			Email:       im.options.DefaultAuthor.Email,
			DisplayName: im.options.DefaultAuthor.DisplayName,
		})
		if err != nil {
			return err
		}
	}

	body := im.transcoder.Run(post.Body)
	excerpt := im.transcoder.Run(post.Excerpt)

	if im.resolver != nil {
		var rewritten int
		body, rewritten = im.resolver.Run(ctx, body)
		if rewritten > 0 {
			slog.Debug("Rewrote media references", "post_id", post.SourceID, "count", rewritten)
		}
	}

	slug := post.Slug
	if slug == "" {
		slug = markup.Slugify(post.Title)
	}

	target, created, err := im.posts.Upsert(int64(post.SourceID), database.PostFields{
		Title:       post.Title,
		Slug:        slug,
		ContentMD:   body,
		Excerpt:     excerpt,
		Status:      string(post.Status),
		AuthorID:    author.ID,
		PublishedAt: post.PublishedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	for _, tagSlug := range post.TagSlugs {
		tag := res.cachedTag(tagSlug)
		if tag == nil {
			continue
		}
		if err := im.posts.AttachTag(target.ID, tag.ID); err != nil {
			return fmt.Errorf("failed to attach tag %s: %w", tagSlug, err)
		}
	}

	commentsCreated, err := im.importComments(target, post.Comments)
	summary.CommentsCreated += commentsCreated
	if err != nil {
		return fmt.Errorf("failed to import comments: %w", err)
	}

	if created {
		summary.PostsCreated++
	} else {
		summary.PostsUpdated++
	}

	action := "updated"
	if created {
		action = "created"
	}
	slog.Info("Imported post", "post_id", post.SourceID, "title", post.Title,
		"status", post.Status, "action", action, "comments", len(post.Comments))

	return nil
}
