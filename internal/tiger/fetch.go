package tiger

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Download fetches url into dest. If dest already exists the download is
// skipped entirely — idempotence is by presence, content is never
// re-validated. A network failure is returned as-is: one attempt, no
// retry, no partial-file cleanup.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		fmt.Printf("  Already downloaded: %s\n", filepath.Base(dest))
		return nil
	}

	fmt.Printf("  Downloading: %s...\n", filepath.Base(dest))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	fmt.Printf("  Downloaded: %s\n", filepath.Base(dest))
	return nil
}

// ExtractZip unpacks every archive member into destDir. If destDir
// already exists the archive is treated as fully extracted and nothing
// is done, even if a previous extraction was interrupted.
func ExtractZip(zipPath, destDir string) error {
	if _, err := os.Stat(destDir); err == nil {
		fmt.Printf("  Already extracted: %s\n", filepath.Base(destDir))
		return nil
	}

	fmt.Printf("  Extracting: %s...\n", filepath.Base(zipPath))

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := extractMember(f, destDir); err != nil {
			return err
		}
	}

	fmt.Printf("  Extracted to: %s\n", destDir)
	return nil
}

func extractMember(f *zip.File, destDir string) error {
	path := filepath.Join(destDir, f.Name)
	// Refuse members that would escape the target directory.
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive member %q escapes extraction directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive member %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FindShapefile returns the first .shp file in dir.
func FindShapefile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.shp"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no .shp file found in %s", dir)
	}
	return matches[0], nil
}
