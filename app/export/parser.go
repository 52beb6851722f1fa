package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// ErrMalformedDocument indicates a structural problem with the export. The
// parser never returns a partial Document alongside it.
var ErrMalformedDocument = errors.New("malformed export document")

// wp:comment_date carries a bare local timestamp
const commentDateLayout = "2006-01-02 15:04:05"

// Parser reads a WordPress eXtended RSS (WXR) export. WXR is RSS 2.0 with
// wp:, dc:, content: and excerpt: namespaced fields, which gofeed surfaces
// through the feed and item extension maps.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses export bytes into a Document. Items whose wp:post_type is not
// "post" are skipped, as are posts with a status outside the known vocabulary.
// Missing optional fields (excerpt, email, publish date) become empty values.
func (p *Parser) Run(data []byte) (*Document, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDocument, err)
	}

	doc := &Document{
		Title:   feed.Title,
		Link:    feed.Link,
		Authors: p.parseAuthors(feed),
		Tags:    p.parseTags(feed),
	}

	// Post categories carry tag names; slugs come from the channel tag table.
	// A tag never declared at channel level does not attach to any post.
	slugsByName := make(map[string]string, len(doc.Tags))
	for _, t := range doc.Tags {
		slugsByName[t.Name] = t.Slug
	}

	for _, item := range feed.Items {
		post, ok := p.parsePost(item, slugsByName)
		if !ok {
			continue
		}
		doc.Posts = append(doc.Posts, post)
	}

	return doc, nil
}

func (p *Parser) parseAuthors(feed *gofeed.Feed) []Author {
	var authors []Author
	for _, e := range feed.Extensions["wp"]["author"] {
		login := childValue(e, "author_login")
		if login == "" {
			continue
		}
		authors = append(authors, Author{
			Login:       login,
			Email:       childValue(e, "author_email"),
			DisplayName: childValue(e, "author_display_name"),
		})
	}
	return authors
}

func (p *Parser) parseTags(feed *gofeed.Feed) []Tag {
	var tags []Tag
	for _, e := range feed.Extensions["wp"]["tag"] {
		slug := childValue(e, "tag_slug")
		if slug == "" {
			continue
		}
		termID, _ := strconv.Atoi(childValue(e, "term_id"))
		tags = append(tags, Tag{
			TermID: termID,
			Slug:   slug,
			Name:   childValue(e, "tag_name"),
		})
	}
	return tags
}

func (p *Parser) parsePost(item *gofeed.Item, slugsByName map[string]string) (Post, bool) {
	if extValue(item.Extensions, "post_type") != "post" {
		return Post{}, false
	}

	// Unknown statuses (trash, private, ...) exclude the single post, never
	// the whole run.
	var status PostStatus
	switch extValue(item.Extensions, "status") {
	case "publish":
		status = StatusPublished
	case "draft":
		status = StatusDraft
	case "future":
		status = StatusScheduled
	default:
		return Post{}, false
	}

	sourceID, err := strconv.Atoi(extValue(item.Extensions, "post_id"))
	if err != nil || sourceID <= 0 {
		return Post{}, false
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	post := Post{
		SourceID:    sourceID,
		Title:       title,
		Slug:        extValue(item.Extensions, "post_name"),
		Body:        item.Content,
		Excerpt:     excerptValue(item.Extensions),
		Status:      status,
		AuthorLogin: itemCreator(item),
		PublishedAt: item.PublishedParsed,
	}

	seen := make(map[string]bool)
	for _, name := range item.Categories {
		slug, ok := slugsByName[name]
		if !ok || seen[slug] {
			continue
		}
		seen[slug] = true
		post.TagSlugs = append(post.TagSlugs, slug)
	}

	for _, e := range item.Extensions["wp"]["comment"] {
		comment, ok := parseComment(e)
		if !ok {
			continue
		}
		post.Comments = append(post.Comments, comment)
	}

	return post, true
}

func parseComment(e ext.Extension) (Comment, bool) {
	sourceID, err := strconv.Atoi(childValue(e, "comment_id"))
	if err != nil || sourceID <= 0 {
		return Comment{}, false
	}

	parentID, _ := strconv.Atoi(childValue(e, "comment_parent"))

	var status CommentStatus
	switch childValue(e, "comment_approved") {
	case "1":
		status = CommentApproved
	case "spam":
		status = CommentSpam
	default:
		status = CommentPending
	}

	authorName := childValue(e, "comment_author")
	if authorName == "" {
		authorName = "Anonymous"
	}

	comment := Comment{
		SourceID:       sourceID,
		ParentSourceID: parentID,
		AuthorName:     authorName,
		AuthorEmail:    childValue(e, "comment_author_email"),
		Body:           childValue(e, "comment_content"),
		Status:         status,
	}

	if created, err := time.Parse(commentDateLayout, childValue(e, "comment_date")); err == nil {
		comment.CreatedAt = &created
	}

	return comment, true
}

// itemCreator returns the dc:creator author login for an item.
func itemCreator(item *gofeed.Item) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return strings.TrimSpace(item.DublinCoreExt.Creator[0])
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

// extValue returns the first non-empty wp: extension value for name.
func extValue(exts ext.Extensions, name string) string {
	for _, e := range exts["wp"][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// excerptValue returns the excerpt:encoded value, if any.
func excerptValue(exts ext.Extensions) string {
	for _, e := range exts["excerpt"]["encoded"] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// childValue returns the first non-empty child element value for name.
func childValue(e ext.Extension, name string) string {
	for _, c := range e.Children[name] {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return ""
}
