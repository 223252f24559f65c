// Package imgbb uploads event images to the ImgBB hosting API and returns
// the public URL stored on the event row.
package imgbb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
)

const uploadURL = "https://api.imgbb.com/1/upload"

type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload posts the image bytes and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", pkgerrors.ErrInvalidInput)
	}
	if filename == "" {
		filename = "image.jpg"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("key", c.apiKey); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", pkgerrors.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: imgbb returned %d", pkgerrors.ErrInternal, resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode imgbb response: %w", err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("%w: imgbb response missing url", pkgerrors.ErrInternal)
	}
	return parsed.Data.URL, nil
}
