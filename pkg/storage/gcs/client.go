package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/config"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/logger"
	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/storage"
)

const (
	defaultAPIBase = "https://storage.googleapis.com"
	pingTimeout    = 5 * time.Second
)

// Client implements storage.Store on a GCS bucket through the JSON API.
type Client struct {
	httpClient *http.Client
	apiBase    string
	bucket     string
	publicBase string
	tokens     tokenProvider
}

var _ storage.Store = (*Client)(nil)

func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var (
		ts  *tokenSource
		err error
	)
	switch {
	case gcp.CredentialsJSON != "":
		ts, err = newServiceAccountTokenSource(httpClient, gcp.CredentialsJSON)
	case gcp.ApplicationCredentials != "":
		raw, readErr := os.ReadFile(gcp.ApplicationCredentials)
		if readErr != nil {
			return nil, fmt.Errorf("reading credentials file: %w", readErr)
		}
		ts, err = newServiceAccountTokenSource(httpClient, string(raw))
	default:
		ts = newMetadataTokenSource(httpClient)
	}
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: httpClient,
		apiBase:    defaultAPIBase,
		bucket:     cfg.BucketName,
		publicBase: cfg.PublicBaseURL,
		tokens:     ts,
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "gcs client initialized")
	}
	return client, nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.apiBase, url.PathEscape(c.bucket), url.PathEscape(name))
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Response, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.httpClient.Do(req)
}

func responseError(resp *http.Response, op, name string) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("gcs %s %s failed: %s: %s", op, name, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("gcs %s %s failed: %s", op, name, resp.Status)
}

func (c *Client) Save(ctx context.Context, r io.Reader, relPath, mimeType string) (storage.Object, error) {
	name, err := storage.CleanRel(relPath)
	if err != nil {
		return storage.Object{}, err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	target := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		c.apiBase, url.PathEscape(c.bucket), url.QueryEscape(name))
	resp, err := c.do(ctx, http.MethodPost, target, r, mimeType)
	if err != nil {
		return storage.Object{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return storage.Object{}, responseError(resp, "upload", name)
	}

	return storage.Object{
		Path:     name,
		URL:      c.URL(name),
		CloudURL: fmt.Sprintf("gs://%s/%s", c.bucket, name),
	}, nil
}

func (c *Client) Delete(ctx context.Context, relPath string) error {
	name, err := storage.CleanRel(relPath)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodDelete, c.objectURL(name), nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return responseError(resp, "delete", name)
	}
	return nil
}

// Move copies the object then deletes the source; GCS has no rename.
func (c *Client) Move(ctx context.Context, from, to string) error {
	src, err := storage.CleanRel(from)
	if err != nil {
		return err
	}
	dst, err := storage.CleanRel(to)
	if err != nil {
		return err
	}

	target := fmt.Sprintf("%s/copyTo/b/%s/o/%s", c.objectURL(src), url.PathEscape(c.bucket), url.PathEscape(dst))
	resp, err := c.do(ctx, http.MethodPost, target, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, "copy", src)
	}
	return c.Delete(ctx, src)
}

type listResponse struct {
	Items []struct {
		Name string `json:"name"`
	} `json:"items"`
	Prefixes      []string `json:"prefixes"`
	NextPageToken string   `json:"nextPageToken"`
}

func (c *Client) listPages(ctx context.Context, prefix string, delimited bool, visit func(listResponse)) error {
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("prefix", prefix)
		if delimited {
			q.Set("delimiter", "/")
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		target := fmt.Sprintf("%s/storage/v1/b/%s/o?%s", c.apiBase, url.PathEscape(c.bucket), q.Encode())

		resp, err := c.do(ctx, http.MethodGet, target, nil, "")
		if err != nil {
			return err
		}
		var page listResponse
		if resp.StatusCode != http.StatusOK {
			err = responseError(resp, "list", prefix)
		} else {
			err = json.NewDecoder(resp.Body).Decode(&page)
		}
		_ = resp.Body.Close()
		if err != nil {
			return err
		}

		visit(page)
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) List(ctx context.Context, dir string) ([]string, error) {
	clean, err := storage.CleanRel(dir)
	if err != nil {
		return nil, err
	}
	prefix := clean + "/"

	seen := map[string]struct{}{}
	err = c.listPages(ctx, prefix, true, func(page listResponse) {
		for _, item := range page.Items {
			if name := strings.TrimPrefix(item.Name, prefix); name != "" {
				seen[name] = struct{}{}
			}
		}
		for _, p := range page.Prefixes {
			if name := strings.TrimSuffix(strings.TrimPrefix(p, prefix), "/"); name != "" {
				seen[name] = struct{}{}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) RemoveDir(ctx context.Context, dir string) error {
	clean, err := storage.CleanRel(dir)
	if err != nil {
		return err
	}

	var objects []string
	if err := c.listPages(ctx, clean+"/", false, func(page listResponse) {
		for _, item := range page.Items {
			objects = append(objects, item.Name)
		}
	}); err != nil {
		return err
	}

	var errs error
	for _, name := range objects {
		if err := c.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Client) URL(relPath string) string {
	base := strings.TrimRight(c.publicBase, "/")
	if base == "" {
		base = defaultAPIBase
	}
	return storage.JoinURL(base, path.Join(c.bucket, relPath))
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokens == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	target := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.apiBase, url.PathEscape(c.bucket))
	resp, err := c.do(ctx, http.MethodGet, target, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp, "ping", c.bucket)
	}
	return nil
}
