package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHubBaseURL is the artifact repository used when none is configured.
const DefaultHubBaseURL = "https://huggingface.co"

// HubFetcher fetches model artifacts from a huggingface-style hub over
// HTTP. With a filename it fetches that single file; without one it lists
// the repository and fetches every file in it.
type HubFetcher struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewHubFetcher constructs a HubFetcher. An empty baseURL selects
// DefaultHubBaseURL. Per-file transfers carry no overall timeout because
// model artifacts can take arbitrarily long; cancellation comes from ctx.
func NewHubFetcher(baseURL string, log zerolog.Logger) *HubFetcher {
	if baseURL == "" {
		baseURL = DefaultHubBaseURL
	}
	return &HubFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Fetch implements Fetcher. It returns the path of the fetched file, or
// the target directory when the whole repository was fetched.
func (h *HubFetcher) Fetch(ctx context.Context, req FetchRequest) (string, error) {
	if req.Filename != "" {
		return h.fetchFile(ctx, req, req.Filename)
	}

	files, err := h.listRepo(ctx, req)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("repository %s has no files", req.RepoID)
	}
	for _, name := range files {
		if _, err := h.fetchFile(ctx, req, name); err != nil {
			return "", err
		}
	}
	return req.TargetDir, nil
}

// repoInfo is the subset of the hub's model-info response we need.
type repoInfo struct {
	Siblings []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
}

// listRepo returns the file names in a repository.
func (h *HubFetcher) listRepo(ctx context.Context, req FetchRequest) ([]string, error) {
	u := h.baseURL + "/api/models/" + req.RepoID
	body, err := h.get(ctx, u, req.Token)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var info repoInfo
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return nil, fmt.Errorf("parsing repo listing for %s: %w", req.RepoID, err)
	}
	names := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		if s.Rfilename != "" {
			names = append(names, s.Rfilename)
		}
	}
	return names, nil
}

// fetchFile downloads one file into the target directory. The transfer
// lands in a partial file under the cache directory first and is renamed
// into place only when complete, so an interrupted fetch never leaves a
// truncated artifact at the final path.
func (h *HubFetcher) fetchFile(ctx context.Context, req FetchRequest, name string) (string, error) {
	u := h.baseURL + "/" + req.RepoID + "/resolve/main/" + url.PathEscape(name)
	body, err := h.get(ctx, u, req.Token)
	if err != nil {
		return "", err
	}
	defer body.Close()

	dest := filepath.Join(req.TargetDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating target dir: %w", err)
	}
	cacheDir := req.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Dir(dest)
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	partial, err := os.CreateTemp(cacheDir, filepath.Base(name)+"-partial-*")
	if err != nil {
		return "", fmt.Errorf("creating partial file: %w", err)
	}
	start := time.Now()
	n, err := io.Copy(partial, body)
	if cerr := partial.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(partial.Name())
		return "", fmt.Errorf("fetching %s from %s: %w", name, req.RepoID, err)
	}
	if err := os.Rename(partial.Name(), dest); err != nil {
		os.Remove(partial.Name())
		return "", fmt.Errorf("placing %s: %w", name, err)
	}
	h.log.Debug().Str("repo_id", req.RepoID).Str("file", name).Int64("bytes", n).Dur("dur", time.Since(start)).Msg("fetched artifact file")
	return dest, nil
}

// get issues an authenticated GET and returns the body on 2xx.
func (h *HubFetcher) get(ctx context.Context, u, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: unexpected status %d", u, resp.StatusCode)
	}
	return resp.Body, nil
}
