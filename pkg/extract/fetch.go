package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cohortforge/platform/pkg/common/config"
	"golang.org/x/oauth2/clientcredentials"
)

// Loader opens a named source extract for a run.
type Loader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirLoader serves extracts from a local directory.
type DirLoader struct {
	Dir string
}

func (l DirLoader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	path := filepath.Join(l.Dir, filepath.Clean(name))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening extract %s: %w", name, err)
	}
	return f, nil
}

// APILoader downloads extracts from a delivery API protected by OAuth2
// client credentials. The token source refreshes transparently.
type APILoader struct {
	baseURL string
	client  *http.Client
}

func NewAPILoader(cfg *config.Config) *APILoader {
	creds := clientcredentials.Config{
		ClientID:     cfg.ExtractClientID,
		ClientSecret: cfg.ExtractClientSecret,
		TokenURL:     cfg.ExtractTokenURL,
	}
	client := creds.Client(context.Background())
	client.Timeout = cfg.ExtractFetchTimeout
	return &APILoader{
		baseURL: strings.TrimRight(cfg.ExtractBaseURL, "/"),
		client:  client,
	}
}

func (l *APILoader) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	endpoint := fmt.Sprintf("%s/extracts/%s", l.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching extract %s: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching extract %s: delivery API returned %s", name, resp.Status)
	}
	return resp.Body, nil
}

// NewLoader picks the delivery API when configured, local files
// otherwise.
func NewLoader(cfg *config.Config) Loader {
	if cfg.ExtractBaseURL != "" {
		return NewAPILoader(cfg)
	}
	return DirLoader{Dir: cfg.ExtractDir}
}
