package intake

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matheus3301/chatvault/internal/export"
)

// InputKind classifies what was handed to the importer.
type InputKind string

const (
	KindTextFile     InputKind = "text"
	KindFileSet      InputKind = "fileset"
	KindArchive      InputKind = "archive"
	KindUnrecognized InputKind = "unrecognized"
)

// Limits tune validation without changing its semantics.
type Limits struct {
	MaxTextBytes int64 // reject structured text files larger than this
	SampleLines  int   // non-blank lines inspected from the prefix
	WarnRatio    float64
	Strict       bool
	MinMatches   int // strict mode: minimum timestamped lines in the sample
}

// DefaultLimits matches what real exports need in practice.
func DefaultLimits() Limits {
	return Limits{
		MaxTextBytes: 512 << 20,
		SampleLines:  50,
		WarnRatio:    0.30,
		MinMatches:   5,
	}
}

// Verdict is the non-rejecting outcome of inspection: what the input is,
// where its pieces live, and any advisories collected along the way.
type Verdict struct {
	Kind       InputKind
	TextPath   string
	MediaPaths []string
	Warnings   []string
}

// RejectError is a validation failure: fatal to this attempt, carrying one
// human-readable reason. It is a typed result, not a panic.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

const maxSkippedListed = 10

// osArtifacts are junk entries skipped silently during file-set scans.
var osArtifacts = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,
}

func isArtifact(name string) bool {
	base := filepath.Base(name)
	return osArtifacts[base] || strings.HasPrefix(base, "._") || strings.HasPrefix(name, "__MACOSX")
}

// Inspect classifies path as a structured text file, a directory file-set,
// or a zip archive, and validates it accordingly.
func Inspect(path string, lim Limits) (*Verdict, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		return inspectDir(path, lim)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		v := &Verdict{Kind: KindTextFile, TextPath: path}
		if err := validateText(path, info.Size(), lim, v); err != nil {
			return nil, err
		}
		return v, nil
	case ".zip":
		return inspectArchive(path, lim)
	default:
		return nil, reject("unsupported input %q: expected a .txt export, a .zip archive, or a directory", filepath.Base(path))
	}
}

// validateText reads only a bounded prefix of the file and counts how many
// of the first SampleLines non-blank lines start with a timestamp shape.
func validateText(path string, size int64, lim Limits, v *Verdict) error {
	if size == 0 {
		return reject("%s is empty", filepath.Base(path))
	}
	if size > lim.MaxTextBytes {
		return reject("%s is %d bytes, over the %d byte limit", filepath.Base(path), size, lim.MaxTextBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	sampled, matched := 0, 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() && sampled < lim.SampleLines {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		sampled++
		if export.HasHeader(line) {
			matched++
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("sample input: %w", err)
	}

	if sampled == 0 {
		return reject("%s contains no text lines", filepath.Base(path))
	}
	if matched == 0 {
		return reject("no timestamped message lines found in the first %d lines of %s", sampled, filepath.Base(path))
	}
	if lim.Strict && matched < lim.MinMatches {
		return reject("strict mode: found %d timestamped lines, need at least %d (short by %d)",
			matched, lim.MinMatches, lim.MinMatches-matched)
	}
	if ratio := float64(matched) / float64(sampled); ratio < lim.WarnRatio {
		v.Warnings = append(v.Warnings, fmt.Sprintf(
			"only %d of %d sampled lines look like message headers; parts of this export may not parse", matched, sampled))
	}
	return nil
}

// inspectDir locates exactly one structured text file in the directory and
// sorts the remaining entries into media and skipped.
func inspectDir(dir string, lim Limits) (*Verdict, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	v := &Verdict{Kind: KindFileSet}
	var texts, skipped []string
	for _, e := range entries {
		if e.IsDir() || isArtifact(e.Name()) {
			continue
		}
		name := e.Name()
		switch {
		case strings.EqualFold(filepath.Ext(name), ".txt"):
			texts = append(texts, name)
		case export.MediaExtensionAllowed(name):
			v.MediaPaths = append(v.MediaPaths, filepath.Join(dir, name))
		default:
			skipped = append(skipped, name)
		}
	}

	if len(texts) == 0 {
		return nil, reject("no chat export (.txt) found in %s", dir)
	}
	sort.Strings(texts)
	if len(texts) > 1 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("found %d .txt files, importing %q", len(texts), texts[0]))
	}
	v.TextPath = filepath.Join(dir, texts[0])

	if len(skipped) > 0 {
		v.Warnings = append(v.Warnings, skippedWarning(skipped))
	}

	info, err := os.Stat(v.TextPath)
	if err != nil {
		return nil, fmt.Errorf("stat export: %w", err)
	}
	if err := validateText(v.TextPath, info.Size(), lim, v); err != nil {
		return nil, err
	}
	return v, nil
}

// skippedWarning lists unrecognized entries, truncated so one messy folder
// cannot flood the caller.
func skippedWarning(skipped []string) string {
	sort.Strings(skipped)
	shown := skipped
	extra := 0
	if len(shown) > maxSkippedListed {
		extra = len(shown) - maxSkippedListed
		shown = shown[:maxSkippedListed]
	}
	w := fmt.Sprintf("skipped %d unrecognized file(s): %s", len(skipped), strings.Join(shown, ", "))
	if extra > 0 {
		w += fmt.Sprintf(" and %d more", extra)
	}
	return w
}
