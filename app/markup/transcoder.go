package markup

import (
	"regexp"
	"strings"
)

// rule is one structural rewrite. Rules run in declaration order over the
// accumulated string; a rule with a fn ignores replace.
type rule struct {
	pattern *regexp.Regexp
	replace string
	fn      func(groups []string) string
}

// Transcoder converts WordPress HTML content to Markdown through a fixed
// sequence of regex passes. The transform is lossy on malformed tag soup;
// the goal is readable Markdown, not round-trip fidelity.
type Transcoder struct {
	rules []rule
}

func NewTranscoder() *Transcoder {
	return &Transcoder{rules: buildRules()}
}

func buildRules() []rule {
	return []rule{
		// Headings, levels 1-4
		{pattern: regexp.MustCompile(`(?s)<h1[^>]*>(.*?)</h1>`), replace: "# ${1}\n\n"},
		{pattern: regexp.MustCompile(`(?s)<h2[^>]*>(.*?)</h2>`), replace: "## ${1}\n\n"},
		{pattern: regexp.MustCompile(`(?s)<h3[^>]*>(.*?)</h3>`), replace: "### ${1}\n\n"},
		{pattern: regexp.MustCompile(`(?s)<h4[^>]*>(.*?)</h4>`), replace: "#### ${1}\n\n"},

		// Bold and italic
		{pattern: regexp.MustCompile(`(?s)<strong[^>]*>(.*?)</strong>`), replace: "**${1}**"},
		{pattern: regexp.MustCompile(`(?s)<b[^>]*>(.*?)</b>`), replace: "**${1}**"},
		{pattern: regexp.MustCompile(`(?s)<em[^>]*>(.*?)</em>`), replace: "*${1}*"},
		{pattern: regexp.MustCompile(`(?s)<i[^>]*>(.*?)</i>`), replace: "*${1}*"},

		// Links
		{pattern: regexp.MustCompile(`(?s)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`), replace: "[${2}](${1})"},

		// Images, with and without alt text. The alt form must run first so the
		// bare form does not swallow its match.
		{pattern: regexp.MustCompile(`<img[^>]*src="([^"]*)"[^>]*alt="([^"]*)"[^>]*/?>`), replace: "![${2}](${1})"},
		{pattern: regexp.MustCompile(`<img[^>]*src="([^"]*)"[^>]*/?>`), replace: "![](${1})"},

		// Lists: container tags are stripped, items become dashed lines
		{pattern: regexp.MustCompile(`<ul[^>]*>`), replace: ""},
		{pattern: regexp.MustCompile(`</ul>`), replace: "\n"},
		{pattern: regexp.MustCompile(`<ol[^>]*>`), replace: ""},
		{pattern: regexp.MustCompile(`</ol>`), replace: "\n"},
		{pattern: regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`), replace: "- ${1}\n"},

		// Code blocks before inline code
		{pattern: regexp.MustCompile(`(?s)<pre[^>]*><code[^>]*>(.*?)</code></pre>`), replace: "```\n${1}\n```\n"},
		{pattern: regexp.MustCompile("(?s)<code[^>]*>(.*?)</code>"), replace: "`${1}`"},

		// Blockquotes: each line of the inner content gets a "> " prefix
		{pattern: regexp.MustCompile(`(?s)<blockquote[^>]*>(.*?)</blockquote>`), fn: func(groups []string) string {
			inner := strings.TrimSpace(groups[1])
			return "> " + strings.ReplaceAll(inner, "\n", "\n> ") + "\n"
		}},

		// Paragraphs and line breaks
		{pattern: regexp.MustCompile(`(?s)<p[^>]*>(.*?)</p>`), replace: "${1}\n\n"},
		{pattern: regexp.MustCompile(`<br\s*/?>`), replace: "\n"},
		{pattern: regexp.MustCompile(`<hr\s*/?>`), replace: "\n---\n"},

		// Strip anything that still looks like a tag, keeping inner text
		{pattern: regexp.MustCompile(`<[^>]+>`), replace: ""},

		// Collapse runs of blank lines
		{pattern: regexp.MustCompile(`\n{3,}`), replace: "\n\n"},
	}
}

// Run applies all rewrite passes in order. It is a pure function: no I/O, and
// the same input always yields the same output. Markdown text containing no
// HTML tags passes through unchanged.
func (t *Transcoder) Run(html string) string {
	if html == "" {
		return ""
	}

	md := html
	for _, r := range t.rules {
		if r.fn != nil {
			md = r.pattern.ReplaceAllStringFunc(md, func(m string) string {
				return r.fn(r.pattern.FindStringSubmatch(m))
			})
			continue
		}
		md = r.pattern.ReplaceAllString(md, r.replace)
	}
	return md
}
