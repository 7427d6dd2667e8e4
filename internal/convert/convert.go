// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert keeps a directory of rendered artifacts in step with a
// directory of source documents. Rendering itself is delegated to a
// Converter; this package decides which files need it and tallies the
// outcome of every file it sees.
package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/logger"
	"github.com/pdiddy/docsync/pkg/types"
)

// Converter renders the document at srcPath into dstPath. Different
// backends (local soffice, a container image, Gotenberg) implement this
// interface.
type Converter interface {
	// Convert writes the rendered artifact for srcPath to dstPath,
	// replacing any existing file.
	Convert(srcPath, dstPath string) error
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(srcPath, dstPath string) error

// Convert calls f(srcPath, dstPath).
func (f ConverterFunc) Convert(srcPath, dstPath string) error {
	return f(srcPath, dstPath)
}

var (
	// ErrInputDir reports a missing or unusable input directory. No work
	// is done and the output directory is left untouched.
	ErrInputDir = errors.New("input directory unavailable")

	// ErrOutputSetup reports that the output directory could not be created.
	ErrOutputSetup = errors.New("output directory setup failed")
)

// ModTime is a modification time that may be absent. An absent ModTime
// belongs to a file that does not exist and is older than any real time,
// including the Unix epoch.
type ModTime struct {
	Time  time.Time
	Valid bool
}

// Absent returns a ModTime for a missing file.
func Absent() ModTime { return ModTime{} }

// At returns a present ModTime.
func At(t time.Time) ModTime { return ModTime{Time: t, Valid: true} }

// OlderThan reports whether m is strictly older than t.
func (m ModTime) OlderThan(t time.Time) bool {
	return !m.Valid || t.After(m.Time)
}

// Task is one source document and the artifact it maps to.
type Task struct {
	Name       string
	SourcePath string
	DestPath   string
	SourceMod  time.Time
	DestMod    ModTime
}

// NeedsConversion reports whether the task must be rendered. With force set
// every task is rendered; otherwise only tasks whose artifact is missing or
// strictly older than the source.
func (t Task) NeedsConversion(force bool) bool {
	return force || t.DestMod.OlderThan(t.SourceMod)
}

// Summary holds the outcome of a sync run. After Sync returns,
// Found == Converted + Skipped + Failed and len(Files) == Found.
type Summary struct {
	Found     int
	Converted int
	Skipped   int
	Failed    int
	Files     []types.FileResult

	StartedAt  time.Time
	FinishedAt time.Time
}

// Total returns the number of files that reached a final outcome.
func (s Summary) Total() int {
	return s.Converted + s.Skipped + s.Failed
}

// HasFailures reports whether any file failed conversion.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run packages the summary together with the parameters that produced it.
func (s Summary) Run(cfg types.SyncConfig, backend string) types.Run {
	files := make([]types.FileResult, len(s.Files))
	copy(files, s.Files)
	return types.Run{
		Config:     cfg.WithDefaults(),
		Backend:    backend,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Found:      s.Found,
		Converted:  s.Converted,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		Files:      files,
	}
}

func (s *Summary) record(r types.FileResult) {
	switch r.Status {
	case types.StatusConverted:
		s.Converted++
	case types.StatusSkipped:
		s.Skipped++
	case types.StatusFailed:
		s.Failed++
	}
	s.Files = append(s.Files, r)
}

// WriteTo prints the summary block.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "\n--- Conversion summary ---\n"+
		"found:     %d\n"+
		"converted: %d\n"+
		"skipped:   %d (up to date)\n"+
		"failed:    %d\n",
		s.Found, s.Converted, s.Skipped, s.Failed)
	return int64(n), err
}

// DestName maps a source file name to its artifact name by replacing the
// trailing sourceExt with targetExt. Names without the suffix are returned
// with targetExt appended.
func DestName(name, sourceExt, targetExt string) string {
	return strings.TrimSuffix(name, sourceExt) + targetExt
}

// Sync renders every document in cfg.InputDir whose name ends with
// cfg.SourceExt into cfg.OutputDir, printing one line per file and a final
// summary block to w.
//
// A missing or unreadable input directory returns ErrInputDir before
// anything is created.
// The output directory is created, including parents, before the scan; a
// failure there returns ErrOutputSetup. Per-file failures never abort the
// run: they are counted and the scan moves on.
//
// Files are processed in os.ReadDir order, which is sorted by name.
func Sync(cfg types.SyncConfig, c Converter, w io.Writer) (Summary, error) {
	cfg = cfg.WithDefaults()

	if err := CheckInputDir(cfg.InputDir); err != nil {
		return Summary{}, err
	}
	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: reading %s: %v", ErrInputDir, cfg.InputDir, err)
	}
	if err := ensureOutputDir(cfg.OutputDir, w); err != nil {
		return Summary{}, err
	}

	fmt.Fprintf(w, "scanning %s for %s files\n", cfg.InputDir, cfg.SourceExt)
	logger.Log.Debug("sync started",
		zap.String("input", cfg.InputDir),
		zap.String("output", cfg.OutputDir),
		zap.Bool("force", cfg.Force))

	s := Summary{StartedAt: time.Now()}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cfg.SourceExt) {
			continue
		}
		s.Found++
		s.record(syncFile(cfg, c, e.Name(), w))
	}
	s.FinishedAt = time.Now()

	s.WriteTo(w)
	logger.Log.Debug("sync finished",
		zap.Int("found", s.Found),
		zap.Int("converted", s.Converted),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed),
		zap.Duration("elapsed", s.FinishedAt.Sub(s.StartedAt)))
	return s, nil
}

// CheckInputDir returns ErrInputDir unless dir exists and is a directory.
func CheckInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputDir, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInputDir, dir)
	}
	return nil
}

func ensureOutputDir(dir string, w io.Writer) error {
	_, statErr := os.Stat(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputSetup, dir, err)
	}
	if errors.Is(statErr, fs.ErrNotExist) {
		fmt.Fprintf(w, "created output directory: %s\n", dir)
	}
	return nil
}

// NewTask stats the source document name in cfg.InputDir and its artifact in
// cfg.OutputDir.
func NewTask(cfg types.SyncConfig, name string) (Task, error) {
	cfg = cfg.WithDefaults()
	t := Task{
		Name:       name,
		SourcePath: filepath.Join(cfg.InputDir, name),
		DestPath:   filepath.Join(cfg.OutputDir, DestName(name, cfg.SourceExt, cfg.TargetExt)),
	}

	src, err := os.Stat(t.SourcePath)
	if err != nil {
		return t, fmt.Errorf("stat source: %w", err)
	}
	t.SourceMod = src.ModTime()

	dst, err := os.Stat(t.DestPath)
	switch {
	case err == nil:
		t.DestMod = At(dst.ModTime())
	case errors.Is(err, fs.ErrNotExist):
		t.DestMod = Absent()
	default:
		return t, fmt.Errorf("stat destination: %w", err)
	}
	return t, nil
}

func syncFile(cfg types.SyncConfig, c Converter, name string, w io.Writer) types.FileResult {
	t, err := NewTask(cfg, name)
	res := types.FileResult{Name: name, Source: t.SourcePath, Destination: t.DestPath}
	if err != nil {
		return failed(res, err, w)
	}

	if !t.NeedsConversion(cfg.Force) {
		fmt.Fprintf(w, "skipped:    %s (%s is up to date)\n", name, filepath.Base(t.DestPath))
		res.Status = types.StatusSkipped
		return res
	}

	fmt.Fprintf(w, "converting: %s (modified %s)\n", name, t.SourceMod.Format(time.DateTime))
	if t.DestMod.Valid {
		fmt.Fprintf(w, "            existing %s modified %s\n",
			filepath.Base(t.DestPath), t.DestMod.Time.Format(time.DateTime))
	}

	if err := c.Convert(t.SourcePath, t.DestPath); err != nil {
		return failed(res, err, w)
	}

	fmt.Fprintf(w, "converted:  %s -> %s\n", name, t.DestPath)
	res.Status = types.StatusConverted
	return res
}

func failed(res types.FileResult, err error, w io.Writer) types.FileResult {
	fmt.Fprintf(w, "failed:     %s (%v)\n", res.Name, err)
	logger.Log.Warn("conversion failed",
		zap.String("source", res.Source),
		zap.String("destination", res.Destination),
		zap.Error(err))
	res.Status = types.StatusFailed
	res.Error = err.Error()
	return res
}
