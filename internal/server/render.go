package server

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// markdown renders GitHub-flavored markdown. Raw HTML stays escaped; post
// and comment bodies come from Reddit and are not trusted.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1f2328; }
a { color: #0969da; }
blockquote { border-left: 4px solid #d1d9e0; margin-left: 0; padding-left: 1rem; color: #59636e; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
pre code { display: block; padding: 1rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.3rem 0.8rem; }
hr { border: 0; border-top: 1px solid #d1d9e0; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageShell))

type pageData struct {
	Title   string
	Content template.HTML
}

// renderPage converts markdown to a standalone HTML page.
func renderPage(title string, src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, pageData{
		Title:   title,
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return page.Bytes(), nil
}

// postMarkdown lays a post and its comments out as a markdown document.
// Bodies are Reddit markdown already and pass through unchanged.
func postMarkdown(post *store.Post, comments []store.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", post.Title)
	fmt.Fprintf(&b, "**r/%s** | u/%s | score %d | %s\n\n",
		post.Subreddit, post.Author, post.Score, post.CreatedUTC.Format("2006-01-02"))

	if post.Selftext != "" {
		b.WriteString(post.Selftext)
		b.WriteString("\n\n")
	} else if !post.IsSelf && post.URL != "" {
		fmt.Fprintf(&b, "Link: <%s>\n\n", post.URL)
	}
	fmt.Fprintf(&b, "[View on Reddit](%s)\n", post.Permalink)

	if len(comments) > 0 {
		fmt.Fprintf(&b, "\n## Comments (%d)\n", len(comments))
		for _, c := range comments {
			fmt.Fprintf(&b, "\n---\n\n**u/%s** (score %d):\n\n%s\n", c.Author, c.Score, c.Body)
		}
	}
	return b.String()
}
