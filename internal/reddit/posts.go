package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// Listing sorts accepted by the subreddit listing endpoints.
var validListingSorts = map[string]bool{"hot": true, "new": true, "top": true, "rising": true}

// Sorts accepted by the search endpoint.
var validSearchSorts = map[string]bool{"relevance": true, "hot": true, "new": true, "top": true, "comments": true}

var validTimeRanges = map[string]bool{"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true}

// ListOptions control a subreddit listing fetch.
type ListOptions struct {
	// Sort is one of hot, new, top or rising. Empty means hot.
	Sort string
	// TimeRange narrows top listings: hour, day, week, month, year or all.
	TimeRange string
	// Limit caps the number of posts fetched; pagination is handled
	// internally. Zero means one page.
	Limit int
}

// SearchOptions control a subreddit search.
type SearchOptions struct {
	// Sort is one of relevance, hot, new, top or comments. Empty means
	// relevance.
	Sort string
	// TimeRange narrows results by post age.
	TimeRange string
	// Limit caps the number of posts fetched.
	Limit int
}

// listing is the envelope Reddit wraps every result set in.
type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// thing is one kind-tagged element of a listing: t3 posts, t1 comments,
// "more" stubs.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// postData is the wire shape of a t3 (link/self post) thing.
type postData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	IsSelf      bool    `json:"is_self"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

func (d postData) toPost(searchQuery string) store.Post {
	author := d.Author
	if author == "" {
		author = "[deleted]"
	}
	return store.Post{
		ID:          d.ID,
		Subreddit:   d.Subreddit,
		Title:       d.Title,
		Selftext:    d.Selftext,
		Author:      author,
		Score:       d.Score,
		NumComments: d.NumComments,
		CreatedUTC:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
		URL:         d.URL,
		Permalink:   "https://reddit.com" + d.Permalink,
		IsSelf:      d.IsSelf,
		UpvoteRatio: d.UpvoteRatio,
		SearchQuery: searchQuery,
	}
}

// Posts fetches a subreddit listing, following pagination cursors until
// opts.Limit posts are collected or the listing ends.
func (c *Client) Posts(ctx context.Context, subreddit string, opts ListOptions) ([]store.Post, error) {
	sort := opts.Sort
	if sort == "" {
		sort = "hot"
	}
	if !validListingSorts[sort] {
		return nil, fmt.Errorf("invalid sort %q: must be hot, new, top or rising", sort)
	}
	if opts.TimeRange != "" && !validTimeRanges[opts.TimeRange] {
		return nil, fmt.Errorf("invalid time range %q", opts.TimeRange)
	}

	params := url.Values{}
	if opts.TimeRange != "" {
		params.Set("t", opts.TimeRange)
	}
	return c.collectPosts(ctx, "/r/"+subreddit+"/"+sort, params, opts.Limit, "")
}

// SearchPosts searches within a subreddit. The query is recorded on each
// returned post so the store keeps which search surfaced it.
func (c *Client) SearchPosts(ctx context.Context, subreddit, query string, opts SearchOptions) ([]store.Post, error) {
	sort := opts.Sort
	if sort == "" {
		sort = "relevance"
	}
	if !validSearchSorts[sort] {
		return nil, fmt.Errorf("invalid search sort %q", sort)
	}
	if opts.TimeRange != "" && !validTimeRanges[opts.TimeRange] {
		return nil, fmt.Errorf("invalid time range %q", opts.TimeRange)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", sort)
	if opts.TimeRange != "" {
		params.Set("t", opts.TimeRange)
	}
	return c.collectPosts(ctx, "/r/"+subreddit+"/search", params, opts.Limit, query)
}

// collectPosts pages through a listing endpoint until limit posts are
// gathered or the cursor runs out. Zero limit means a single default page.
func (c *Client) collectPosts(ctx context.Context, path string, base url.Values, limit int, searchQuery string) ([]store.Post, error) {
	var posts []store.Post
	after := ""

	for {
		params := url.Values{}
		for k, vs := range base {
			params[k] = vs
		}
		pageSize := maxPageSize
		if limit > 0 && limit-len(posts) < pageSize {
			pageSize = limit - len(posts)
		}
		params.Set("limit", strconv.Itoa(pageSize))
		if after != "" {
			params.Set("after", after)
		}

		var l listing
		if err := c.get(ctx, path, params, &l); err != nil {
			return nil, err
		}
		if len(l.Data.Children) == 0 {
			return posts, nil
		}

		for _, child := range l.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var pd postData
			if err := json.Unmarshal(child.Data, &pd); err != nil {
				continue
			}
			p := pd.toPost(searchQuery)
			if c.excluded(p) {
				continue
			}
			posts = append(posts, p)
			if limit > 0 && len(posts) >= limit {
				return posts, nil
			}
		}

		if limit <= 0 || l.Data.After == "" {
			return posts, nil
		}
		after = l.Data.After
	}
}

// excluded reports whether a link post's target matches an exclusion glob.
// Self posts are never excluded; their URL just points back at Reddit.
func (c *Client) excluded(p store.Post) bool {
	if p.IsSelf || len(c.exclude) == 0 {
		return false
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return false
	}
	target := u.Host + u.Path
	for _, pattern := range c.exclude {
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}
