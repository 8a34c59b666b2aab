// Package importer copies catalog files into the courserec data directory,
// fingerprinting them with MD5 so unchanged catalogs are not re-indexed.
package importer

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Result is returned by ImportFile.
type Result struct {
	Path     string // destination path of the catalog
	MD5      string // fingerprint of the imported content
	Copied   bool   // false when the destination already held identical content
	Previous string // where the replaced catalog was kept, if any
}

// ImportFile copies the catalog at src into dstDir, keeping its base name.
//
// An identical destination is left alone. A different one is renamed to
// <name>.previous<ext> before the new content is written.
func ImportFile(src, dstDir string) (*Result, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("cannot stat catalog %s: %w", src, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog %s is a directory", src)
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dstDir, err)
	}

	srcMD5, err := FileMD5(src)
	if err != nil {
		return nil, fmt.Errorf("md5 %s: %w", src, err)
	}
	dst := filepath.Join(dstDir, filepath.Base(src))
	result := &Result{Path: dst, MD5: srcMD5}

	if _, err := os.Stat(dst); err == nil {
		dstMD5, err := FileMD5(dst)
		if err != nil {
			return nil, fmt.Errorf("md5 %s: %w", dst, err)
		}
		if srcMD5 == dstMD5 {
			return result, nil
		}
		prev := previousPath(dst)
		if err := os.Rename(dst, prev); err != nil {
			return nil, fmt.Errorf("cannot keep previous catalog %s: %w", prev, err)
		}
		result.Previous = prev
	}

	// write next to dst, then rename into place
	tmp := dst + ".tmp"
	if err := copyFile(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("copy %s → %s: %w", src, dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	result.Copied = true
	return result, nil
}

// previousPath inserts .previous before the final extension.
//
//	courses.csv → courses.previous.csv
func previousPath(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	return base + ".previous" + ext
}

// FileMD5 returns the hex-encoded MD5 digest of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// copyFile copies src to dst with mode 0644.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
