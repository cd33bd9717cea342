package artifact

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSaveScreenshot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewLocalStore(root, "/artifacts")
	if err != nil {
		t.Fatalf("NewLocalStore returned error: %v", err)
	}

	payload := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	url, err := store.SaveScreenshotBase64(context.Background(), "run_abc123", payload)
	if err != nil {
		t.Fatalf("SaveScreenshotBase64 returned error: %v", err)
	}
	if !strings.HasPrefix(url, "/artifacts/screenshots/run_abc123-") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}

	name := strings.TrimPrefix(url, "/artifacts/screenshots/")
	data, err := os.ReadFile(filepath.Join(root, "screenshots", name))
	if err != nil {
		t.Fatalf("screenshot file not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("file contents = %q", data)
	}
}

func TestLocalStoreSanitizesRunID(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir(), "/artifacts")
	if err != nil {
		t.Fatal(err)
	}

	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	url, err := store.SaveScreenshotBase64(context.Background(), "../run/1", payload)
	if err != nil {
		t.Fatalf("SaveScreenshotBase64 returned error: %v", err)
	}
	if strings.Contains(url, "..") || strings.Contains(strings.TrimPrefix(url, "/artifacts/screenshots/"), "/") {
		t.Fatalf("url leaks path characters: %q", url)
	}
}

func TestLocalStoreRejectsBadInput(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir(), "artifacts/")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.SaveScreenshotBase64(ctx, "", "aGk="); err == nil {
		t.Fatal("accepted empty run id")
	}
	if _, err := store.SaveScreenshotBase64(ctx, "run_1", ""); err == nil {
		t.Fatal("accepted empty payload")
	}
	if _, err := store.SaveScreenshotBase64(ctx, "run_1", "!!not-base64!!"); err == nil {
		t.Fatal("accepted malformed base64")
	}

	if _, err := NewLocalStore("  ", "/artifacts"); err == nil {
		t.Fatal("accepted blank root dir")
	}
}
