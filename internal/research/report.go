package research

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// writeReport renders the summary as markdown under the reports directory
// and returns the file path.
func (r *Runner) writeReport(sum *Summary) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0o755); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Research Collection Report\n\n")
	fmt.Fprintf(&b, "- **Run**: `%s`\n", sum.RunID)
	fmt.Fprintf(&b, "- **Started**: %s\n", sum.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Finished**: %s\n", sum.FinishedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **New posts**: %d\n", sum.PostsNew)
	fmt.Fprintf(&b, "- **Already known**: %d\n", sum.PostsSeen)
	fmt.Fprintf(&b, "- **Comments collected**: %d\n", sum.Comments)
	fmt.Fprintf(&b, "- **Failed queries**: %d\n\n", len(sum.Errors))

	b.WriteString("## By subreddit\n\n")
	b.WriteString("| Subreddit | New posts | Comments |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, s := range sum.BySubreddit {
		fmt.Fprintf(&b, "| r/%s | %d | %d |\n", s.Subreddit, s.Posts, s.Comments)
	}

	b.WriteString("\n## By topic\n\n")
	for _, t := range sum.ByTopic {
		fmt.Fprintf(&b, "- **%s**: %d new posts\n", t.Topic, t.Posts)
	}

	if len(sum.TopPosts) > 0 {
		b.WriteString("\n## Top posts by score\n\n")
		for i, p := range sum.TopPosts {
			fmt.Fprintf(&b, "%d. [%s](%s) (r/%s, score %d, %d comments)\n",
				i+1, p.Title, p.Permalink, p.Subreddit, p.Score, p.NumComments)
		}
	}

	if len(sum.Errors) > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, e := range sum.Errors {
			fmt.Fprintf(&b, "- %s\n", e.Error())
		}
	}

	name := fmt.Sprintf("report_%s.md", sum.RunID)
	path := filepath.Join(r.reportsDir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
