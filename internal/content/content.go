package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidContent is returned when a content document fails validation.
var ErrInvalidContent = errors.New("invalid content")

//go:embed default.yaml
var defaultDocument []byte

// PullRequest states.
const (
	StateOpen   = "open"
	StateMerged = "merged"
	StateClosed = "closed"
)

type Social struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type Profile struct {
	Name     string   `yaml:"name"`
	Nickname string   `yaml:"nickname"`
	Location string   `yaml:"location"`
	Socials  []Social `yaml:"socials"`
}

type Greeting struct {
	Title     string `yaml:"title"`
	Subtitle  string `yaml:"subtitle"`
	ResumeURL string `yaml:"resume_url"`
}

type Skill struct {
	Title   string   `yaml:"title"`
	Bullets []string `yaml:"bullets"`
	Tools   []string `yaml:"tools"`
}

type Organization struct {
	Login string `yaml:"login"`
	URL   string `yaml:"url"`
}

type PullRequest struct {
	Title     string `yaml:"title"`
	Repo      string `yaml:"repo"`
	Number    int    `yaml:"number"`
	State     string `yaml:"state"`
	Additions int    `yaml:"additions"`
	Deletions int    `yaml:"deletions"`
	URL       string `yaml:"url"`
}

type Issue struct {
	Title  string `yaml:"title"`
	Repo   string `yaml:"repo"`
	Number int    `yaml:"number"`
	State  string `yaml:"state"`
	URL    string `yaml:"url"`
}

// Content is everything the portfolio displays. Values handed out by a
// Store are treated as read-only.
type Content struct {
	Profile       Profile        `yaml:"profile"`
	Greeting      Greeting       `yaml:"greeting"`
	Skills        []Skill        `yaml:"skills"`
	Organizations []Organization `yaml:"organizations"`
	PullRequests  []PullRequest  `yaml:"pull_requests"`
	Issues        []Issue        `yaml:"issues"`
}

// Counts tallies items per state.
type Counts struct {
	Open   int
	Merged int
	Closed int
}

// Total sums all states.
func (c Counts) Total() int { return c.Open + c.Merged + c.Closed }

// PullRequestCounts tallies pull requests by state.
func (c *Content) PullRequestCounts() Counts {
	var out Counts
	for _, pr := range c.PullRequests {
		switch pr.State {
		case StateOpen:
			out.Open++
		case StateMerged:
			out.Merged++
		case StateClosed:
			out.Closed++
		}
	}
	return out
}

// IssueCounts tallies issues by state.
func (c *Content) IssueCounts() Counts {
	var out Counts
	for _, is := range c.Issues {
		switch is.State {
		case StateOpen:
			out.Open++
		case StateClosed:
			out.Closed++
		}
	}
	return out
}

// Default returns the embedded portfolio document.
func Default() (*Content, error) {
	return Parse(bytes.NewReader(defaultDocument))
}

// LoadFile reads and validates a content document from disk.
func LoadFile(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content %s: %w", path, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load content %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML content document.
func Parse(r io.Reader) (*Content, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Content
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidContent)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required fields and state enums.
func (c *Content) Validate() error {
	if strings.TrimSpace(c.Profile.Name) == "" {
		return fmt.Errorf("%w: profile.name is required", ErrInvalidContent)
	}
	for i, s := range c.Skills {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: skills[%d].title is required", ErrInvalidContent, i)
		}
	}
	for i, o := range c.Organizations {
		if strings.TrimSpace(o.Login) == "" {
			return fmt.Errorf("%w: organizations[%d].login is required", ErrInvalidContent, i)
		}
	}
	for i, pr := range c.PullRequests {
		if strings.TrimSpace(pr.Title) == "" {
			return fmt.Errorf("%w: pull_requests[%d].title is required", ErrInvalidContent, i)
		}
		switch pr.State {
		case StateOpen, StateMerged, StateClosed:
		default:
			return fmt.Errorf("%w: pull_requests[%d].state %q must be open, merged or closed", ErrInvalidContent, i, pr.State)
		}
	}
	for i, is := range c.Issues {
		if strings.TrimSpace(is.Title) == "" {
			return fmt.Errorf("%w: issues[%d].title is required", ErrInvalidContent, i)
		}
		switch is.State {
		case StateOpen, StateClosed:
		default:
			return fmt.Errorf("%w: issues[%d].state %q must be open or closed", ErrInvalidContent, i, is.State)
		}
	}
	return nil
}
