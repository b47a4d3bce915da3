// Package updates queries upstream release feeds for the external tools and
// compares them against installed versions.
package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	version "github.com/hashicorp/go-version"

	"convertsave/internal/logging"
	"convertsave/internal/tools"
)

const (
	githubAPIBase   = "https://api.github.com"
	magickIndexURL  = "https://imagemagick.org/archive/binaries/"
	ffmpegTagsRepo  = "BtbN/FFmpeg-Builds"
	pandocRepo      = "jgm/pandoc"
	probeTimeout    = 30 * time.Second
	probeUserAgent  = "convertsave"
	githubMediaType = "application/vnd.github.v3+json"
)

var (
	autobuildTagRe  = regexp.MustCompile(`^autobuild-\d{4}-\d{2}-\d{2}-\d{2}-\d{2}$`)
	magickArchiveRe = regexp.MustCompile(`^ImageMagick-(7\.\d+\.\d+-\d+)-portable-Q16-HDRI-x64\.7z$`)
)

// Info is the per-tool result of an update check.
type Info struct {
	Installed       bool   `json:"installed"`
	CurrentVersion  string `json:"currentVersion,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
	LatestVersion   string `json:"latestVersion,omitempty"`
}

// Client probes release endpoints. The zero value is not usable; construct
// with New.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	apiBase  string
	indexURL string
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIBase points GitHub queries at an alternate base URL.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithMagickIndexURL points the raster engine probe at an alternate index page.
func WithMagickIndexURL(url string) Option {
	return func(c *Client) { c.indexURL = url }
}

func New(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: probeTimeout},
		logger:     logging.NewComponentLogger(logger, "updates"),
		apiBase:    githubAPIBase,
		indexURL:   magickIndexURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the newest published version identifier for the tool.
// FFmpeg versions are autobuild tags, Pandoc versions are release tags, and
// ImageMagick versions come from the portable archive filenames on the
// binaries index page.
func (c *Client) Latest(ctx context.Context, id tools.ID) (string, error) {
	switch id {
	case tools.FFmpeg:
		return c.latestFFmpegTag(ctx)
	case tools.Pandoc:
		return c.latestPandocRelease(ctx)
	case tools.ImageMagick:
		return c.latestMagickArchive(ctx)
	default:
		return "", fmt.Errorf("no release feed for %s", id)
	}
}

// Check probes every tool with a release feed and reports whether the
// installed version is behind. installedVersions maps tool id to the version
// string reported by the resolved binary; missing entries mean the tool is
// not installed.
func (c *Client) Check(ctx context.Context, installedVersions map[tools.ID]string) map[string]Info {
	out := make(map[string]Info)
	for _, id := range []tools.ID{tools.FFmpeg, tools.ImageMagick, tools.Pandoc} {
		current, installed := installedVersions[id]
		info := Info{Installed: installed, CurrentVersion: current}
		latest, err := c.Latest(ctx, id)
		if err != nil {
			c.logger.Warn("update probe failed",
				logging.String(logging.FieldTool, string(id)),
				logging.Error(err))
			out[string(id)] = info
			continue
		}
		info.LatestVersion = latest
		if installed {
			info.UpdateAvailable = UpdateAvailable(current, latest)
		}
		out[string(id)] = info
	}
	return out
}

// UpdateAvailable reports whether latest is newer than current. Both strings
// are compared as versions when they parse; autobuild tags and other opaque
// identifiers fall back to plain inequality.
func UpdateAvailable(current, latest string) bool {
	if latest == "" {
		return false
	}
	if current == "" {
		return true
	}
	cv, errC := version.NewVersion(normalizeVersion(current))
	lv, errL := version.NewVersion(normalizeVersion(latest))
	if errC != nil || errL != nil {
		return current != latest
	}
	return lv.GreaterThan(cv)
}

func normalizeVersion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v")
	// ImageMagick archive versions carry a patch suffix after a dash.
	return strings.ReplaceAll(s, "-", ".")
}

func (c *Client) latestPandocRelease(ctx context.Context) (string, error) {
	var release struct {
		TagName string `json:"tag_name"`
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, pandocRepo)
	if err := c.getJSON(ctx, url, &release); err != nil {
		return "", fmt.Errorf("query pandoc releases: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("pandoc release feed returned no tag")
	}
	return release.TagName, nil
}

func (c *Client) latestFFmpegTag(ctx context.Context) (string, error) {
	var tags []struct {
		Name string `json:"name"`
	}
	url := fmt.Sprintf("%s/repos/%s/tags?per_page=100", c.apiBase, ffmpegTagsRepo)
	if err := c.getJSON(ctx, url, &tags); err != nil {
		return "", fmt.Errorf("query ffmpeg tags: %w", err)
	}
	var builds []string
	for _, t := range tags {
		if autobuildTagRe.MatchString(t.Name) {
			builds = append(builds, t.Name)
		}
	}
	if len(builds) == 0 {
		return "", fmt.Errorf("ffmpeg tag feed contained no autobuild tags")
	}
	// The date-stamped tag format sorts correctly as text.
	sort.Sort(sort.Reverse(sort.StringSlice(builds)))
	return builds[0], nil
}

func (c *Client) latestMagickArchive(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.indexURL, "")
	if err != nil {
		return "", fmt.Errorf("fetch binaries index: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parse binaries index: %w", err)
	}

	var versions []string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if m := magickArchiveRe.FindStringSubmatch(href); m != nil {
			versions = append(versions, m[1])
		}
	})
	if len(versions) == 0 {
		return "", fmt.Errorf("no portable Q16-HDRI-x64 archives listed at %s", c.indexURL)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	return versions[0], nil
}

// MagickArchiveURL returns the download URL for the given archive version.
func (c *Client) MagickArchiveURL(ver string) string {
	return fmt.Sprintf("%sImageMagick-%s-portable-Q16-HDRI-x64.7z", c.indexURL, ver)
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	body, err := c.get(ctx, url, githubMediaType)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", probeUserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
