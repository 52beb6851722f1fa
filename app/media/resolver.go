package media

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ChrisB2025/wp-migrate/app/database"
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	htmlImagePattern     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
)

// Resolver locates embedded image references, downloads them (deduplicating
// against already-imported media by filename), and rewrites body text to the
// stored location. The per-run URL cache and the store are single-writer;
// fetches may run concurrently from several workers.
type Resolver struct {
	media   database.MediaRepository
	fetcher *Fetcher
	domain  string

	mu       sync.Mutex
	resolved map[string]*database.Media
}

// NewResolver creates a resolver. A non-empty domain restricts extraction to
// references containing it (relative references always match).
func NewResolver(media database.MediaRepository, fetcher *Fetcher, domain string) *Resolver {
	return &Resolver{
		media:    media,
		fetcher:  fetcher,
		domain:   domain,
		resolved: make(map[string]*database.Media),
	}
}

// ExtractReferences returns the image URLs embedded in text, Markdown form
// first then raw HTML img tags, first occurrence per distinct URL, in order.
func (r *Resolver) ExtractReferences(text string) []string {
	var refs []string
	seen := make(map[string]bool)

	for _, pattern := range []*regexp.Regexp{markdownImagePattern, htmlImagePattern} {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			ref := match[1]
			if seen[ref] || !r.wanted(ref) {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func (r *Resolver) wanted(ref string) bool {
	if strings.HasPrefix(ref, "data:") {
		return false
	}
	if r.domain == "" {
		return true
	}
	return strings.Contains(ref, r.domain) || strings.HasPrefix(ref, "/")
}

// Run resolves every reference in body and rewrites each resolved one
// globally. A failed fetch leaves that reference untouched; the caller
// proceeds with whatever was rewritten. Returns the new body and the number
// of rewritten references.
func (r *Resolver) Run(ctx context.Context, body string) (string, int) {
	rewritten := 0
	for _, ref := range r.ExtractReferences(body) {
		media, err := r.resolveRef(ctx, ref)
		if err != nil {
			slog.Warn("Media reference left unresolved", "url", ref, "error", err)
			continue
		}
		if newURL := media.URL(); newURL != ref {
			body = strings.ReplaceAll(body, ref, newURL)
			rewritten++
		}
	}
	return body, rewritten
}

// ResolveFirst resolves only the first extracted reference, for featured
// image backfill. Returns nil without error when text carries no references.
func (r *Resolver) ResolveFirst(ctx context.Context, text string) (*database.Media, error) {
	refs := r.ExtractReferences(text)
	if len(refs) == 0 {
		return nil, nil
	}
	return r.resolveRef(ctx, refs[0])
}

// resolveRef returns the stored media for one reference, fetching it unless
// a record with the same derived filename already exists. The lock is
// dropped during the fetch so outstanding downloads do not serialize; the
// post-fetch recheck closes the window where two workers fetch the same URL.
func (r *Resolver) resolveRef(ctx context.Context, ref string) (*database.Media, error) {
	name := FilenameFromURL(ref)

	r.mu.Lock()
	if media, err := r.lookupLocked(ref, name); err != nil || media != nil {
		r.mu.Unlock()
		return media, err
	}
	r.mu.Unlock()

	data, filename, err := r.fetcher.Run(ctx, ref)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if media, err := r.lookupLocked(ref, name); err != nil || media != nil {
		return media, err
	}

	media, err := r.media.Create(data, filename)
	if err != nil {
		return nil, err
	}
	r.resolved[ref] = media
	slog.Info("Media imported", "url", ref, "path", media.Path, "size", media.SizeBytes)
	return media, nil
}

func (r *Resolver) lookupLocked(ref, name string) (*database.Media, error) {
	if media, ok := r.resolved[ref]; ok {
		return media, nil
	}
	media, err := r.media.FindByName(name)
	if err != nil {
		return nil, err
	}
	if media != nil {
		r.resolved[ref] = media
	}
	return media, nil
}
