package importer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChrisB2025/wp-migrate/app/config"
	"github.com/ChrisB2025/wp-migrate/app/database"
	"github.com/ChrisB2025/wp-migrate/app/export"
)

type testStore struct {
	db       *database.DB
	users    database.UserRepository
	tags     database.TagRepository
	posts    database.PostRepository
	comments database.CommentRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	return &testStore{
		db:       db,
		users:    database.NewUserRepository(db),
		tags:     database.NewTagRepository(db),
		posts:    database.NewPostRepository(db),
		comments: database.NewCommentRepository(db),
	}
}

func newTestImporter(t *testing.T, store *testStore) *Importer {
	t.Helper()

	options, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	return New(store.users, store.tags, store.posts, store.comments, nil, options)
}

func testDocument() *export.Document {
	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	commented := time.Date(2023, 7, 4, 9, 30, 0, 0, time.UTC)
	replied := time.Date(2023, 7, 4, 10, 0, 0, 0, time.UTC)

	return &export.Document{
		Title: "Test Blog",
		Authors: []export.Author{
			{Login: "alice", Email: "alice@example.com", DisplayName: "Alice"},
		},
		Tags: []export.Tag{
			{TermID: 11, Slug: "golang", Name: "Golang"},
			{TermID: 12, Slug: "databases", Name: "Databases"},
		},
		Posts: []export.Post{
			{
				SourceID:    42,
				Title:       "First Post",
				Slug:        "first-post",
				Body:        "<h1>Hi</h1><p>World</p>",
				Status:      export.StatusPublished,
				AuthorLogin: "alice",
				PublishedAt: &published,
				TagSlugs:    []string{"golang", "databases"},
				Comments: []export.Comment{
					{SourceID: 100, AuthorName: "Carol", Body: "Nice post!",
						Status: export.CommentApproved, CreatedAt: &commented},
					{SourceID: 101, ParentSourceID: 100, AuthorName: "Alice", Body: "Thanks!",
						Status: export.CommentApproved, CreatedAt: &replied},
				},
			},
			{
				SourceID:    43,
				Title:       "A Draft",
				Slug:        "a-draft",
				Body:        "<p>Unfinished</p>",
				Status:      export.StatusDraft,
				AuthorLogin: "alice",
			},
		},
	}
}

func TestImportCreatesEntities(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)

	summary, err := im.Run(context.Background(), testDocument())
	if err != nil {
		t.Fatal(err)
	}

	if summary.TagsCreated != 2 {
		t.Errorf("Expected 2 tags created, got %d", summary.TagsCreated)
	}
	if summary.PostsCreated != 2 {
		t.Errorf("Expected 2 posts created, got %d", summary.PostsCreated)
	}
	if summary.PostsUpdated != 0 || summary.PostsFailed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.CommentsCreated != 2 {
		t.Errorf("Expected 2 comments created, got %d", summary.CommentsCreated)
	}

	post, err := store.posts.GetByWPPostID(42)
	if err != nil {
		t.Fatal(err)
	}
	if post == nil {
		t.Fatal("Expected post 42 to exist")
	}
	if post.ContentMD != "# Hi\n\nWorld\n\n" {
		t.Errorf("Expected transcoded body, got %q", post.ContentMD)
	}
	if post.Status != "published" {
		t.Errorf("Expected published status, got '%s'", post.Status)
	}

	slugs, err := store.posts.GetTagSlugs(post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 2 {
		t.Errorf("Expected 2 tag slugs, got %v", slugs)
	}

	user, err := store.users.GetByLogin("alice")
	if err != nil {
		t.Fatal(err)
	}
	if user == nil {
		t.Fatal("Expected author to exist")
	}
	if post.AuthorID != user.ID {
		t.Errorf("Expected post author %d, got %d", user.ID, post.AuthorID)
	}
}

func TestImportIdempotent(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)
	doc := testDocument()

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	summary, err := im.Run(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	if summary.TagsCreated != 0 {
		t.Errorf("Expected no new tags, got %d", summary.TagsCreated)
	}
	if summary.PostsCreated != 0 {
		t.Errorf("Expected no new posts, got %d", summary.PostsCreated)
	}
	if summary.PostsUpdated != 2 {
		t.Errorf("Expected 2 posts updated, got %d", summary.PostsUpdated)
	}
	if summary.CommentsCreated != 0 {
		t.Errorf("Expected no new comments, got %d", summary.CommentsCreated)
	}

	postCount, _ := store.posts.GetPostCount()
	tagCount, _ := store.tags.GetTagCount()
	commentCount, _ := store.comments.GetCommentCount()
	if postCount != 2 || tagCount != 2 || commentCount != 2 {
		t.Errorf("Expected counts unchanged, got posts=%d tags=%d comments=%d",
			postCount, tagCount, commentCount)
	}
}

func TestImportCommentThreading(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)
	doc := testDocument()

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	post, err := store.posts.GetByWPPostID(42)
	if err != nil {
		t.Fatal(err)
	}
	comments, err := store.comments.GetByPost(post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(comments))
	}

	byAuthor := map[string]database.Comment{}
	for _, c := range comments {
		byAuthor[c.AuthorName] = c
	}
	root := byAuthor["Carol"]
	child := byAuthor["Alice"]

	if root.ParentID != nil {
		t.Errorf("Expected root comment without parent, got %v", root.ParentID)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Errorf("Expected child parent %d, got %v", root.ID, child.ParentID)
	}
	expected := time.Date(2023, 7, 4, 9, 30, 0, 0, time.UTC)
	if !root.CreatedAt.Equal(expected) {
		t.Errorf("Expected original comment time %v, got %v", expected, root.CreatedAt)
	}
}

func TestImportPromotesOrphanComments(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)

	doc := &export.Document{
		Posts: []export.Post{{
			SourceID: 1,
			Title:    "Post",
			Slug:     "post",
			Status:   export.StatusPublished,
			Comments: []export.Comment{
				{SourceID: 5, ParentSourceID: 999, AuthorName: "Orphan",
					Body: "Where is my parent?", Status: export.CommentApproved},
			},
		}},
	}

	summary, err := im.Run(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if summary.CommentsCreated != 1 {
		t.Errorf("Expected 1 comment created, got %d", summary.CommentsCreated)
	}

	post, _ := store.posts.GetByWPPostID(1)
	comments, err := store.comments.GetByPost(post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(comments))
	}
	if comments[0].ParentID != nil {
		t.Errorf("Expected orphan promoted to root, got parent %v", comments[0].ParentID)
	}
}

func TestImportDefaultAuthorFallback(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)

	doc := &export.Document{
		Posts: []export.Post{{
			SourceID:    1,
			Title:       "Ghost Written",
			Slug:        "ghost-written",
			Status:      export.StatusPublished,
			AuthorLogin: "someone-unknown",
		}},
	}

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	fallback, err := store.users.GetByLogin("admin")
	if err != nil {
		t.Fatal(err)
	}
	if fallback == nil {
		t.Fatal("Expected default author to be created")
	}

	post, _ := store.posts.GetByWPPostID(1)
	if post.AuthorID != fallback.ID {
		t.Errorf("Expected post assigned to default author %d, got %d", fallback.ID, post.AuthorID)
	}
}

func TestImportKeepsManuallyAttachedTags(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)
	doc := testDocument()

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	// Simulate a tag added by hand after the first migration
	extra, _, err := store.tags.GetOrCreate("hand-added", "Hand Added", 0)
	if err != nil {
		t.Fatal(err)
	}
	post, _ := store.posts.GetByWPPostID(42)
	if err := store.posts.AttachTag(post.ID, extra.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	slugs, err := store.posts.GetTagSlugs(post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(slugs) != 3 {
		t.Errorf("Expected the hand-added tag to survive, got %v", slugs)
	}
}

func TestImportSlugFallback(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)

	doc := &export.Document{
		Posts: []export.Post{{
			SourceID: 1,
			Title:    "No Slug Here!",
			Status:   export.StatusPublished,
		}},
	}

	if _, err := im.Run(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	post, _ := store.posts.GetByWPPostID(1)
	if post.Slug != "no-slug-here" {
		t.Errorf("Expected derived slug 'no-slug-here', got '%s'", post.Slug)
	}
}

func TestImportCancellation(t *testing.T) {
	store := newTestStore(t)
	im := newTestImporter(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.Run(ctx, testDocument())
	if err == nil {
		t.Fatal("Expected cancellation error")
	}

	count, _ := store.posts.GetPostCount()
	if count != 0 {
		t.Errorf("Expected no posts written after immediate cancel, got %d", count)
	}
}
