package research

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/arisylafeta/reddit-analyzer/internal/config"
)

// Topic groups related search queries under a research theme.
type Topic struct {
	Name    string   `yaml:"name"`
	Queries []string `yaml:"queries"`
}

// Plan describes one automation run: which subreddits to mine, which topics
// to search for and how much to pull.
type Plan struct {
	Subreddits      []string `yaml:"subreddits"`
	Topics          []Topic  `yaml:"topics"`
	PostLimit       int      `yaml:"post_limit"`
	Sort            string   `yaml:"sort"`
	TimeRange       string   `yaml:"time_range"`
	CollectComments bool     `yaml:"collect_comments"`
	CommentLimit    int      `yaml:"comment_limit"`
}

// PlanFromConfig builds a Plan from the research section of the config.
func PlanFromConfig(cfg config.Research) Plan {
	topics := make([]Topic, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		topics = append(topics, Topic{Name: t.Name, Queries: t.Queries})
	}
	return Plan{
		Subreddits:      cfg.Subreddits,
		Topics:          topics,
		PostLimit:       cfg.PostLimit,
		Sort:            cfg.Sort,
		TimeRange:       cfg.TimeRange,
		CollectComments: cfg.CollectComments,
		CommentLimit:    cfg.CommentLimit,
	}
}

// LoadPlan reads a plan from a YAML file.
func LoadPlan(path string) (Plan, error) {
	var plan Plan
	data, err := os.ReadFile(path)
	if err != nil {
		return plan, fmt.Errorf("reading plan %s: %w", path, err)
	}
	if err := yamlv3.Unmarshal(data, &plan); err != nil {
		return plan, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	return plan, nil
}

// Normalize fills zero values with sensible defaults.
func (p *Plan) Normalize() {
	if p.PostLimit == 0 {
		p.PostLimit = 100
	}
	if p.Sort == "" {
		p.Sort = "relevance"
	}
	if p.TimeRange == "" {
		p.TimeRange = "month"
	}
	if p.CommentLimit == 0 {
		p.CommentLimit = 2
	}
}

// Validate checks that the plan can do any work at all.
func (p Plan) Validate() error {
	if len(p.Subreddits) == 0 {
		return fmt.Errorf("plan has no subreddits")
	}
	if p.QueryCount() == 0 {
		return fmt.Errorf("plan has no topic queries")
	}
	if p.PostLimit < 1 {
		return fmt.Errorf("post_limit must be at least 1")
	}
	return nil
}

// QueryCount returns the total number of search queries across all topics.
func (p Plan) QueryCount() int {
	n := 0
	for _, t := range p.Topics {
		n += len(t.Queries)
	}
	return n
}
