// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/httputil"
	"github.com/pdiddy/docsync/internal/logger"
	"github.com/pdiddy/docsync/pkg/types"
)

// gotenbergRoute is the LibreOffice conversion route of a Gotenberg server.
const gotenbergRoute = "/forms/libreoffice/convert"

// GotenbergConverter renders documents by uploading them to a Gotenberg
// server, which runs LibreOffice on its side. Gotenberg only produces PDF.
type GotenbergConverter struct {
	client    *http.Client
	endpoint  string
	userAgent string
	username  string
	password  string
}

// NewGotenbergConverter validates cfg.GotenbergURL and returns a converter
// that posts to it with client.
func NewGotenbergConverter(client *http.Client, cfg types.BackendConfig) (*GotenbergConverter, error) {
	if cfg.GotenbergURL == "" {
		return nil, fmt.Errorf("gotenberg backend requires a server URL")
	}
	u, err := url.Parse(cfg.GotenbergURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gotenberg URL %q", cfg.GotenbergURL)
	}
	return &GotenbergConverter{
		client:    client,
		endpoint:  strings.TrimRight(cfg.GotenbergURL, "/") + gotenbergRoute,
		userAgent: cfg.UserAgent,
		username:  cfg.Username,
		password:  cfg.Password,
	}, nil
}

// Convert uploads srcPath and writes the returned PDF to dstPath.
func (g *GotenbergConverter) Convert(srcPath, dstPath string) error {
	if ext := filepath.Ext(dstPath); !strings.EqualFold(ext, ".pdf") {
		return fmt.Errorf("gotenberg only renders pdf, not %s", ext)
	}

	body, contentType, err := multipartFile("files", srcPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if g.username != "" {
		req.SetBasicAuth(g.username, g.password)
	}

	logger.Log.Debug("posting to gotenberg",
		zap.String("endpoint", g.endpoint),
		zap.String("source", srcPath),
		zap.Int("bytes", len(body)))

	resp, err := httputil.DoWithRetry(ctx, g.client, req, 0)
	if err != nil {
		return fmt.Errorf("converting %s with gotenberg: %w", srcPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gotenberg returned %s for %s: %s", resp.Status, srcPath, strings.TrimSpace(string(msg)))
	}
	return writeAtomic(dstPath, resp.Body)
}

// multipartFile encodes the file at path as a single form file field.
func multipartFile(field, path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
