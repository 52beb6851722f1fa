package media

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ChrisB2025/wp-migrate/app/database"
)

// Report summarizes one processing pass over the stored posts.
type Report struct {
	PostsProcessed int
	PostsUpdated   int
	MediaResolved  int
}

// Processor runs the resolver over every stored post with a bounded worker
// pool. Fetches for distinct posts are independent and idempotent, so
// concurrency here is safe; all store writes stay serialized behind the
// single database connection.
type Processor struct {
	posts       database.PostRepository
	resolver    *Resolver
	workerCount int
}

func NewProcessor(posts database.PostRepository, resolver *Resolver, workerCount int) *Processor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Processor{posts: posts, resolver: resolver, workerCount: workerCount}
}

// Run rewrites media references in every stored post's body.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	posts, err := p.posts.GetAllPosts()
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)

	jobs := make(chan database.Post)
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range jobs {
				updated, resolved := p.processPost(ctx, post)
				mu.Lock()
				report.PostsProcessed++
				report.MediaResolved += resolved
				if updated {
					report.PostsUpdated++
				}
				mu.Unlock()
			}
		}()
	}

	for _, post := range posts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return &report, ctx.Err()
		case jobs <- post:
		}
	}
	close(jobs)
	wg.Wait()

	return &report, nil
}

func (p *Processor) processPost(ctx context.Context, post database.Post) (bool, int) {
	slog.Info("Processing post media", "post", post.Title)

	newBody, resolved := p.resolver.Run(ctx, post.ContentMD)
	if newBody == post.ContentMD {
		return false, resolved
	}

	if err := p.posts.UpdateContent(post.ID, newBody); err != nil {
		slog.Warn("Failed to update post content", "post", post.Title, "error", err)
		return false, resolved
	}
	return true, resolved
}

// BackfillFeatured sets each post's featured image from its first embedded
// reference, skipping posts that already have one. Sequential: the featured
// pass is cheap and mostly dedup hits.
func (p *Processor) BackfillFeatured(ctx context.Context) (*Report, error) {
	posts, err := p.posts.GetAllPosts()
	if err != nil {
		return nil, err
	}

	var report Report
	for _, post := range posts {
		select {
		case <-ctx.Done():
			return &report, ctx.Err()
		default:
		}

		report.PostsProcessed++
		if post.FeaturedMediaID != nil {
			continue
		}

		media, err := p.resolver.ResolveFirst(ctx, post.ContentMD)
		if err != nil {
			slog.Warn("Failed to resolve featured image", "post", post.Title, "error", err)
			continue
		}
		if media == nil {
			continue
		}

		if err := p.posts.SetFeaturedMedia(post.ID, media.ID); err != nil {
			slog.Warn("Failed to set featured image", "post", post.Title, "error", err)
			continue
		}
		slog.Info("Featured image set", "post", post.Title, "path", media.Path)
		report.PostsUpdated++
		report.MediaResolved++
	}

	return &report, nil
}
