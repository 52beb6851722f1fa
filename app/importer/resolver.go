package importer

import (
	"fmt"

	"github.com/ChrisB2025/wp-migrate/app/database"
	"github.com/ChrisB2025/wp-migrate/app/export"
)

// resolution is the run-scoped identity cache: export-local keys (author
// login, tag slug) mapped to store rows. It is created per run and passed
// down the call chain, never shared across runs, so independent imports can
// run concurrently without cross-talk. Within a run the first resolution
// for a key creates and caches the mapping; later ones reuse it.
type resolution struct {
	users database.UserRepository
	tags  database.TagRepository

	authorsByLogin map[string]*database.User
	tagsBySlug     map[string]*database.Tag

	tagsCreated int
}

func newResolution(users database.UserRepository, tags database.TagRepository) *resolution {
	return &resolution{
		users:          users,
		tags:           tags,
		authorsByLogin: make(map[string]*database.User),
		tagsBySlug:     make(map[string]*database.Tag),
	}
}

// resolveAuthor maps an export author to a store user, creating it on first
// sight. Store failures here are fatal to the run.
func (r *resolution) resolveAuthor(author export.Author) (*database.User, error) {
	if user, ok := r.authorsByLogin[author.Login]; ok {
		return user, nil
	}

	user, _, err := r.users.GetOrCreate(author.Login, author.Email, author.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("%w: author %s: %s", ErrResolution, author.Login, err)
	}

	r.authorsByLogin[author.Login] = user
	return user, nil
}

// cachedAuthor returns the already-resolved user for login, or nil.
func (r *resolution) cachedAuthor(login string) *database.User {
	return r.authorsByLogin[login]
}

// resolveTag maps an export tag to a store tag, creating it on first sight.
func (r *resolution) resolveTag(tag export.Tag) (*database.Tag, error) {
	if resolved, ok := r.tagsBySlug[tag.Slug]; ok {
		return resolved, nil
	}

	resolved, created, err := r.tags.GetOrCreate(tag.Slug, tag.Name, int64(tag.TermID))
	if err != nil {
		return nil, fmt.Errorf("%w: tag %s: %s", ErrResolution, tag.Slug, err)
	}
	if created {
		r.tagsCreated++
	}

	r.tagsBySlug[tag.Slug] = resolved
	return resolved, nil
}

// cachedTag returns the already-resolved tag for slug, or nil.
func (r *resolution) cachedTag(slug string) *database.Tag {
	return r.tagsBySlug[slug]
}
