package intake

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matheus3301/chatvault/internal/export"
)

// zipSignature is the fixed local-file-header magic every zip starts with.
var zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

// CheckArchiveSignature reads the first four bytes of path and verifies the
// zip local-file-header magic. No extraction is attempted on mismatch.
func CheckArchiveSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return reject("%s is not a valid archive", filepath.Base(path))
	}
	if !bytes.Equal(magic[:], zipSignature) {
		return reject("%s is not a valid archive", filepath.Base(path))
	}
	return nil
}

// inspectArchive validates the signature, then classifies archive entries
// the same way a directory file-set is classified. The structured text
// entry and media entries are extracted to a temp directory owned by the
// caller (Verdict paths point into it).
func inspectArchive(path string, lim Limits) (*Verdict, error) {
	if err := CheckArchiveSignature(path); err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, reject("%s is not a valid archive", filepath.Base(path))
	}
	defer func() { _ = r.Close() }()

	if len(r.File) == 0 {
		return nil, reject("%s is empty", filepath.Base(path))
	}

	dest, err := os.MkdirTemp("", "chatvault-extract-")
	if err != nil {
		return nil, fmt.Errorf("extract dir: %w", err)
	}

	v := &Verdict{Kind: KindArchive}
	var texts, skipped []string
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() || isArtifact(entry.Name) {
			continue
		}
		name := filepath.Base(entry.Name)
		switch {
		case strings.EqualFold(filepath.Ext(name), ".txt"):
			texts = append(texts, entry.Name)
		case export.MediaExtensionAllowed(name):
			out, err := extractEntry(entry, dest)
			if err != nil {
				return nil, err
			}
			v.MediaPaths = append(v.MediaPaths, out)
		default:
			skipped = append(skipped, name)
		}
	}

	if len(texts) == 0 {
		return nil, reject("no chat export (.txt) found inside %s", filepath.Base(path))
	}
	sort.Strings(texts)
	if len(texts) > 1 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("archive holds %d .txt files, importing %q", len(texts), filepath.Base(texts[0])))
	}
	for _, entry := range r.File {
		if entry.Name == texts[0] {
			out, err := extractEntry(entry, dest)
			if err != nil {
				return nil, err
			}
			v.TextPath = out
			break
		}
	}

	if len(skipped) > 0 {
		v.Warnings = append(v.Warnings, skippedWarning(skipped))
	}

	info, err := os.Stat(v.TextPath)
	if err != nil {
		return nil, fmt.Errorf("stat extracted export: %w", err)
	}
	if err := validateText(v.TextPath, info.Size(), lim, v); err != nil {
		return nil, err
	}
	return v, nil
}

// extractEntry writes one archive entry into dest under its base name,
// which also flattens any directory structure and blocks path traversal.
func extractEntry(entry *zip.File, dest string) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open archive entry %s: %w", entry.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out := filepath.Join(dest, filepath.Base(entry.Name))
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", entry.Name, err)
	}
	_, copyErr := io.Copy(f, rc)
	if closeErr := f.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return "", fmt.Errorf("extract %s: %w", entry.Name, copyErr)
	}
	return out, nil
}
