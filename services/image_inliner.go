package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ImageInliner turns a remote image reference into an inlined payload
type ImageInliner interface {
	Inline(ctx context.Context, ref string) (string, error)
}

// IsRemoteImage reports whether ref is a link rather than inlined bytes
func IsRemoteImage(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// HTTPImageInliner downloads images and encodes them as data: URIs
type HTTPImageInliner struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPImageInliner creates an inliner with a request timeout and a size cap
func NewHTTPImageInliner(timeout time.Duration, maxBytes int64) *HTTPImageInliner {
	return &HTTPImageInliner{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Inline fetches ref and returns it as data:<content-type>;base64,<payload>
func (h *HTTPImageInliner) Inline(ctx context.Context, ref string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return "", fmt.Errorf("image exceeds %d bytes", h.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
