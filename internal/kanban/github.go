package kanban

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const defaultGitHubURL = "https://api.github.com"

// Issue is the subset of a GitHub issue used by sync.
type Issue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	Labels      []Label   `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type Label struct {
	Name string `json:"name"`
}

// IsPullRequest reports whether the issue is a pull request; the issues API
// returns both.
func (i Issue) IsPullRequest() bool {
	return i.PullRequest != nil
}

func (i Issue) LabelNames() []string {
	names := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		names = append(names, l.Name)
	}
	return names
}

type GitHubConfig struct {
	Token   string
	Owner   string
	Repos   []string
	BaseURL string
	Timeout time.Duration
}

// GitHub is a minimal REST client for the repositories synced to the board.
type GitHub struct {
	client  *http.Client
	baseURL string
	owner   string
	repos   []string
}

// NewGitHub creates a client. With a token, requests are authorized through
// an oauth2 static token source.
func NewGitHub(ctx context.Context, cfg GitHubConfig) *GitHub {
	client := &http.Client{}
	if cfg.Token != "" {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	client.Timeout = cfg.Timeout
	if client.Timeout == 0 {
		client.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGitHubURL
	}
	return &GitHub{
		client:  client,
		baseURL: baseURL,
		owner:   cfg.Owner,
		repos:   cfg.Repos,
	}
}

func (g *GitHub) Repos() []string {
	if g.owner == "" {
		return nil
	}
	return g.repos
}

// OpenIssues lists up to 50 open issues of a repository.
func (g *GitHub) OpenIssues(ctx context.Context, repo string) ([]Issue, error) {
	var issues []Issue
	q := url.Values{"state": {"open"}, "per_page": {"50"}}
	if _, err := g.get(ctx, g.repoPath(repo, "issues"), q, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// RepoInfo fetches repository metadata, the total issue count and the date
// of the latest commit concurrently.
func (g *GitHub) RepoInfo(ctx context.Context, repo string) (RepoInfo, error) {
	var (
		meta struct {
			Description string `json:"description"`
			Language    string `json:"language"`
			Stars       int    `json:"stargazers_count"`
			Forks       int    `json:"forks_count"`
			OpenIssues  int    `json:"open_issues_count"`
			HTMLURL     string `json:"html_url"`
		}
		issues  []json.RawMessage
		link    string
		commits []struct {
			Commit struct {
				Author struct {
					Date time.Time `json:"date"`
				} `json:"author"`
			} `json:"commit"`
		}
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, err := g.get(gctx, g.repoPath(repo, ""), nil, &meta)
		return err
	})
	group.Go(func() error {
		h, err := g.get(gctx, g.repoPath(repo, "issues"), url.Values{"state": {"all"}, "per_page": {"1"}}, &issues)
		if h != nil {
			link = h.Get("Link")
		}
		return err
	})
	group.Go(func() error {
		_, err := g.get(gctx, g.repoPath(repo, "commits"), url.Values{"per_page": {"1"}}, &commits)
		return err
	})
	if err := group.Wait(); err != nil {
		return RepoInfo{}, err
	}

	info := RepoInfo{
		Name:        repo,
		Description: meta.Description,
		Language:    meta.Language,
		Stars:       meta.Stars,
		Forks:       meta.Forks,
		OpenIssues:  meta.OpenIssues,
		TotalIssues: lastPage(link, len(issues)),
		URL:         meta.HTMLURL,
	}
	if len(commits) > 0 {
		date := commits[0].Commit.Author.Date
		info.LastCommit = &date
	}
	return info, nil
}

func (g *GitHub) repoPath(repo, rest string) string {
	p := "/repos/" + url.PathEscape(g.owner) + "/" + url.PathEscape(repo)
	if rest != "" {
		p += "/" + rest
	}
	return p
}

func (g *GitHub) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.Header, fmt.Errorf("github %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, fmt.Errorf("github %s: decode: %w", path, err)
	}
	return resp.Header, nil
}

var lastPageRe = regexp.MustCompile(`[?&]page=(\d+)>; rel="last"`)

// lastPage extracts the page count from a Link header. With one item per
// page that is the total number of items.
func lastPage(link string, fallback int) int {
	m := lastPageRe.FindStringSubmatch(link)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return n
}
