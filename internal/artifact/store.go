// Package artifact persists post-checkout screenshots so a human can audit
// what the storefront showed when the run settled.
package artifact

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store interface {
	SaveScreenshotBase64(ctx context.Context, runID, payload string) (string, error)
}

type LocalStore struct {
	rootDir string
	baseURL string
}

func NewLocalStore(rootDir, baseURL string) (*LocalStore, error) {
	root := strings.TrimSpace(rootDir)
	if root == "" {
		return nil, errors.New("artifact root dir is required")
	}
	if err := os.MkdirAll(filepath.Join(root, "screenshots"), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directories: %w", err)
	}

	prefix := strings.TrimSpace(baseURL)
	if prefix == "" {
		prefix = "/artifacts"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	prefix = strings.TrimSuffix(prefix, "/")

	return &LocalStore{rootDir: root, baseURL: prefix}, nil
}

// RootDir exposes the storage root so the API server can serve it.
func (s *LocalStore) RootDir() string {
	return s.rootDir
}

func (s *LocalStore) SaveScreenshotBase64(ctx context.Context, runID, payload string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return "", errors.New("run id is required")
	}
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return "", errors.New("payload is required")
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("decode screenshot payload: %w", err)
	}

	name := fmt.Sprintf("%s-%d.png", sanitizeID(runID), time.Now().UTC().UnixMilli())
	path := filepath.Join(s.rootDir, "screenshots", name)
	if err := os.WriteFile(path, decoded, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return s.baseURL + "/screenshots/" + name, nil
}

func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
