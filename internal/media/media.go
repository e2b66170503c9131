// Package media uploads images to Cloudinary's unsigned upload endpoint and
// returns their public URLs.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

type Conf struct {
	cloudName    string
	uploadPreset string
	httpClient   *http.Client
}

func NewConf(cloudName, uploadPreset string) (Conf, error) {
	if cloudName == "" || uploadPreset == "" {
		return Conf{}, fmt.Errorf("cloudinary cloud name and upload preset are required")
	}
	return Conf{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload posts the image as multipart form data with the unsigned preset and
// returns the hosted secure URL.
func (c *Conf) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", fmt.Errorf("failed to write upload preset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image upload failed: %s", resp.Status)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploaded.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure url")
	}
	return uploaded.SecureURL, nil
}
