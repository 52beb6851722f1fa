package media

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChrisB2025/wp-migrate/app/database"
)

type processorFixture struct {
	processor *Processor
	posts     database.PostRepository
	authorID  int64
	serverURL string
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	author, _, err := database.NewUserRepository(db).GetOrCreate("tester", "", "Tester")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "bytes for ", r.URL.Path)
	}))
	t.Cleanup(server.Close)

	posts := database.NewPostRepository(db)
	mediaRepo := database.NewMediaRepository(db, t.TempDir())
	fetcher := NewFetcher(server.URL, "", "test-agent", 5*time.Second)
	resolver := NewResolver(mediaRepo, fetcher, "")

	return &processorFixture{
		processor: NewProcessor(posts, resolver, 3),
		posts:     posts,
		authorID:  author.ID,
		serverURL: server.URL,
	}
}

func (f *processorFixture) seedPost(t *testing.T, wpID int64, body string) *database.Post {
	t.Helper()
	post, _, err := f.posts.Upsert(wpID, database.PostFields{
		Title: fmt.Sprintf("Post %d", wpID), Slug: fmt.Sprintf("post-%d", wpID),
		ContentMD: body, Status: "published", AuthorID: f.authorID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return post
}

func TestProcessorRewritesStoredPosts(t *testing.T) {
	f := newProcessorFixture(t)

	f.seedPost(t, 1, fmt.Sprintf("![a](%s/uploads/a.png)", f.serverURL))
	f.seedPost(t, 2, fmt.Sprintf("![b](%s/uploads/b.png) plus ![a](%s/uploads/a.png)", f.serverURL, f.serverURL))
	f.seedPost(t, 3, "no images at all")

	report, err := f.processor.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.PostsProcessed != 3 {
		t.Errorf("Expected 3 posts processed, got %d", report.PostsProcessed)
	}
	if report.PostsUpdated != 2 {
		t.Errorf("Expected 2 posts updated, got %d", report.PostsUpdated)
	}

	all, err := f.posts.GetAllPosts()
	if err != nil {
		t.Fatal(err)
	}
	for _, post := range all[:2] {
		if strings.Contains(post.ContentMD, f.serverURL) {
			t.Errorf("Post %d still references the origin server: %q", post.ID, post.ContentMD)
		}
		if !strings.Contains(post.ContentMD, "/media/") {
			t.Errorf("Post %d not rewritten to stored media: %q", post.ID, post.ContentMD)
		}
	}
	if all[2].ContentMD != "no images at all" {
		t.Errorf("Post without images should be untouched, got %q", all[2].ContentMD)
	}
}

func TestBackfillFeatured(t *testing.T) {
	f := newProcessorFixture(t)

	f.seedPost(t, 1, fmt.Sprintf("![f](%s/uploads/featured.png) text", f.serverURL))
	f.seedPost(t, 2, "text without images")

	report, err := f.processor.BackfillFeatured(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PostsUpdated != 1 {
		t.Errorf("Expected 1 post updated, got %d", report.PostsUpdated)
	}

	all, err := f.posts.GetAllPosts()
	if err != nil {
		t.Fatal(err)
	}
	if all[0].FeaturedMediaID == nil {
		t.Error("Expected first post to gain a featured image")
	}
	if all[1].FeaturedMediaID != nil {
		t.Error("Expected second post to stay without a featured image")
	}

	// A second pass must not change anything
	report, err = f.processor.BackfillFeatured(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PostsUpdated != 0 {
		t.Errorf("Expected no updates on second pass, got %d", report.PostsUpdated)
	}
}
