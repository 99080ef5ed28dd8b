package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/arisylafeta/reddit-analyzer/internal/store"
)

// commentData is the wire shape of a t1 (comment) thing. Replies is either
// an empty string or a nested listing.
type commentData struct {
	ID          string          `json:"id"`
	Author      string          `json:"author"`
	Body        string          `json:"body"`
	Score       int             `json:"score"`
	CreatedUTC  float64         `json:"created_utc"`
	ParentID    string          `json:"parent_id"`
	IsSubmitter bool            `json:"is_submitter"`
	Replies     json.RawMessage `json:"replies"`
}

// Comments fetches up to limit comments for a post, walking the reply tree
// depth-first. Deleted and removed comments are skipped, as are "load more"
// stubs. Zero limit means no cap.
func (c *Client) Comments(ctx context.Context, subreddit, postID string, limit int) ([]store.Comment, error) {
	params := url.Values{}
	params.Set("sort", "top")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	// The endpoint returns a two-element array: the post listing and the
	// comment tree.
	var pair []listing
	if err := c.get(ctx, "/r/"+subreddit+"/comments/"+postID, params, &pair); err != nil {
		return nil, err
	}
	if len(pair) < 2 {
		return nil, fmt.Errorf("unexpected comments response for post %s", postID)
	}

	var comments []store.Comment
	flattenComments(pair[1].Data.Children, postID, limit, &comments)
	return comments, nil
}

func flattenComments(children []thing, postID string, limit int, out *[]store.Comment) {
	for _, child := range children {
		if limit > 0 && len(*out) >= limit {
			return
		}
		if child.Kind != "t1" {
			continue
		}

		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			continue
		}
		if cd.Body == "" || cd.Body == "[deleted]" || cd.Body == "[removed]" {
			continue
		}

		author := cd.Author
		if author == "" {
			author = "[deleted]"
		}
		*out = append(*out, store.Comment{
			ID:          cd.ID,
			PostID:      postID,
			Author:      author,
			Body:        cd.Body,
			Score:       cd.Score,
			CreatedUTC:  time.Unix(int64(cd.CreatedUTC), 0).UTC(),
			ParentID:    cd.ParentID,
			IsSubmitter: cd.IsSubmitter,
		})

		// Replies nest another listing; an empty string means none.
		if len(cd.Replies) > 0 && cd.Replies[0] == '{' {
			var nested listing
			if err := json.Unmarshal(cd.Replies, &nested); err == nil {
				flattenComments(nested.Data.Children, postID, limit, out)
			}
		}
	}
}
