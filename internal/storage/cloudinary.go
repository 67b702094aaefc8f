// Package storage integrates the external image host. Cloudinary's
// upload API is plain HTTP with a SHA-1 request signature, so the client
// is a thin net/http wrapper.
package storage

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/feedback-board/internal/config"
)

// ErrNotConfigured is returned when Cloudinary credentials are missing.
var ErrNotConfigured = errors.New("cloudinary credentials not configured")

// Image is a stored image reference.
type Image struct {
	PublicID string
	URL      string
}

// ImageStore uploads and deletes externally hosted images.
type ImageStore interface {
	Upload(ctx context.Context, content io.Reader, publicID string) (*Image, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryClient implements ImageStore against the Cloudinary API.
type CloudinaryClient struct {
	cfg    config.CloudinaryConfig
	client *http.Client
}

// NewCloudinaryClient builds a client from config.
func NewCloudinaryClient(cfg config.CloudinaryConfig) *CloudinaryClient {
	return &CloudinaryClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *CloudinaryClient) configured() bool {
	return c.cfg.CloudName != "" && c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

func (c *CloudinaryClient) endpoint(action string) string {
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/%s", c.cfg.CloudName, action)
}

// qualify prepends the configured folder to the public id.
func (c *CloudinaryClient) qualify(publicID string) string {
	if c.cfg.Folder == "" || strings.HasPrefix(publicID, c.cfg.Folder+"/") {
		return publicID
	}
	return c.cfg.Folder + "/" + publicID
}

// sign produces the signature Cloudinary expects over the public_id and
// timestamp parameters.
func (c *CloudinaryClient) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.cfg.APISecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

// Upload stores the image content under publicID and returns the hosted
// reference.
func (c *CloudinaryClient) Upload(ctx context.Context, content io.Reader, publicID string) (*Image, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}

	raw, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read image content: %w", err)
	}

	qualified := c.qualify(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Set("file", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(raw))
	form.Set("api_key", c.cfg.APIKey)
	form.Set("public_id", qualified)
	form.Set("timestamp", timestamp)
	form.Set("signature", c.sign(qualified, timestamp))

	var result struct {
		PublicID  string `json:"public_id"`
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.post(ctx, c.endpoint("upload"), form, &result); err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}

	hostedURL := result.SecureURL
	if hostedURL == "" {
		hostedURL = result.URL
	}
	if hostedURL == "" {
		return nil, errors.New("cloudinary upload: no url returned")
	}
	return &Image{PublicID: result.PublicID, URL: hostedURL}, nil
}

// Delete removes the image identified by publicID.
func (c *CloudinaryClient) Delete(ctx context.Context, publicID string) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	if publicID == "" {
		return nil
	}

	qualified := c.qualify(publicID)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Set("public_id", qualified)
	form.Set("api_key", c.cfg.APIKey)
	form.Set("timestamp", timestamp)
	form.Set("signature", c.sign(qualified, timestamp))

	var result struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.post(ctx, c.endpoint("destroy"), form, &result); err != nil {
		return err
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", result.Error.Message)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", result.Result)
	}
	return nil
}

func (c *CloudinaryClient) post(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("cloudinary response status %d: %w", res.StatusCode, err)
	}
	return nil
}
