// Package robots decides whether a page may be fetched under the host's
// robots.txt rules.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrDisallowed is returned by callers that refuse a page under robots.txt.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Policy fetches and memoizes robots.txt per origin.
type Policy struct {
	HTTPClient *http.Client
	UserAgent  string
	// TTL bounds how long fetched rules are reused. Zero means 30 minutes.
	TTL time.Duration

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether pageURL may be fetched. A robots.txt that answers
// with a non-2xx status allows everything.
func (p *Policy) Allowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	rules, err := p.rulesFor(ctx, u)
	if err != nil {
		return false, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(p.UserAgent, path), nil
}

func (p *Policy) rulesFor(ctx context.Context, u *url.URL) (Rules, error) {
	origin := u.Scheme + "://" + u.Host
	p.mu.Lock()
	if p.mem == nil {
		p.mem = make(map[string]memEntry)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if ent, ok := p.mem[origin]; ok && p.now().Before(ent.expiry) {
		p.mu.Unlock()
		return ent.rules, nil
	}
	p.mu.Unlock()

	rules, err := p.fetch(ctx, origin+"/robots.txt")
	if err != nil {
		return Rules{}, err
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	p.mu.Lock()
	p.mem[origin] = memEntry{rules: rules, expiry: p.now().Add(ttl)}
	p.mu.Unlock()
	return rules, nil
}

func (p *Policy) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, fmt.Errorf("get robots.txt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Str("url", robotsURL).Int("status", resp.StatusCode).Msg("no robots.txt; allowing all")
		return Rules{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots.txt: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse reads robots.txt text. Unknown directives are ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	var groups []Group
	var current Group
	flush := func() {
		if len(current.Agents) > 0 {
			groups = append(groups, current)
		}
		current = Group{}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent":
			if len(current.Allow) > 0 || len(current.Disallow) > 0 {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed applies the longest matching Allow or Disallow pattern of the
// best matching agent group; Allow wins ties and no match allows.
func (r Rules) IsAllowed(userAgent, path string) bool {
	idx := r.groupFor(userAgent)
	if idx < 0 {
		return true
	}
	g := r.Groups[idx]
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// groupFor prefers the longest agent token contained in userAgent over "*".
func (r Rules) groupFor(userAgent string) int {
	ua := strings.ToLower(userAgent)
	bestIdx, bestScore := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
	}
	return bestIdx
}

// matches anchors pattern at the start of path; '*' matches any run and a
// trailing '$' anchors the end.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	if anchored {
		b.WriteString("$")
	}
	ok, _ := regexp.MatchString(b.String(), path)
	return ok
}
