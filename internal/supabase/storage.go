package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// UploadOptions controls an object upload.
type UploadOptions struct {
	ContentType string
	Upsert      bool
}

// Upload stores data at path in bucket. With Upsert false an existing object
// is never replaced; the service answers with a duplicate error instead.
func (c *Client) Upload(ctx context.Context, token, bucket, path string, data []byte, opts UploadOptions) error {
	h := http.Header{}
	h.Set("x-upsert", fmt.Sprintf("%t", opts.Upsert))
	h.Set("cache-control", "max-age=3600")
	ct := opts.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/storage/v1/object/" + bucket + "/" + escapePath(path),
		token:  token,
		header: h,
		body:   bytes.NewReader(data),
	})
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// CreateSignedURL issues a capability URL for path valid for ttl (whole seconds).
func (c *Client) CreateSignedURL(ctx context.Context, token, bucket, path string, ttl time.Duration) (string, error) {
	var out signResponse
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/storage/v1/object/sign/" + bucket + "/" + escapePath(path),
		token:   token,
		jsonIn:  map[string]int64{"expiresIn": int64(ttl / time.Second)},
		jsonOut: &out,
	})
	if err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("sign %s: empty signed url", path)
	}
	if strings.HasPrefix(out.SignedURL, "http://") || strings.HasPrefix(out.SignedURL, "https://") {
		return out.SignedURL, nil
	}
	return c.BaseURL() + "/storage/v1" + out.SignedURL, nil
}
