package tiger

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadSkipsExisting(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("zip bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "tl_2024_18_sldl.zip")
	ctx := context.Background()

	if err := Download(ctx, srv.Client(), srv.URL, dest); err != nil {
		t.Fatalf("first download failed: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 request, got %d", hits)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "zip bytes" {
		t.Errorf("downloaded content = %q", data)
	}

	// Second call must not touch the network.
	if err := Download(ctx, srv.Client(), srv.URL, dest); err != nil {
		t.Fatalf("re-download failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected cached skip, server saw %d requests", hits)
	}
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "missing.zip")
	if err := Download(context.Background(), srv.Client(), srv.URL, dest); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "tl_test.zip")
	writeTestZip(t, zipPath, map[string]string{
		"tl_test.shp": "shp",
		"tl_test.dbf": "dbf",
		"tl_test.prj": "prj",
	})

	extractDir := filepath.Join(dir, "tl_test")
	if err := ExtractZip(zipPath, extractDir); err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	shpPath, err := FindShapefile(extractDir)
	if err != nil {
		t.Fatalf("FindShapefile failed: %v", err)
	}
	if filepath.Base(shpPath) != "tl_test.shp" {
		t.Errorf("found %s", shpPath)
	}

	// An existing directory means already extracted, even if empty-ish.
	if err := ExtractZip(zipPath, extractDir); err != nil {
		t.Errorf("re-extract should be a no-op, got %v", err)
	}
}

func TestExtractZipRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeTestZip(t, zipPath, map[string]string{
		"../escape.txt": "nope",
	})

	if err := ExtractZip(zipPath, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error for member escaping the extraction directory")
	}
}

func TestFindShapefileMissing(t *testing.T) {
	if _, err := FindShapefile(t.TempDir()); err == nil {
		t.Error("expected error for directory without .shp")
	}
}

func writeTestZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range members {
		mw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := mw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
