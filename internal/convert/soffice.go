// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/docsync/internal/logger"
)

const defaultSofficeBin = "soffice"

// runner abstracts process execution for testing.
type runner interface {
	LookPath(file string) (string, error)
	CombinedOutput(name string, args ...string) ([]byte, error)
}

// osRunner is the production runner backed by os/exec.
type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osRunner) CombinedOutput(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// SofficeConverter renders documents with a locally installed LibreOffice
// in headless mode. The target format is taken from the destination
// extension, so a ".pdf" destination asks LibreOffice for pdf.
type SofficeConverter struct {
	bin string
	run runner
}

// NewSofficeConverter resolves bin (default "soffice") on PATH and returns
// a converter that invokes it once per document.
func NewSofficeConverter(bin string) (*SofficeConverter, error) {
	return newSofficeConverter(bin, osRunner{})
}

func newSofficeConverter(bin string, r runner) (*SofficeConverter, error) {
	if bin == "" {
		bin = defaultSofficeBin
	}
	path, err := r.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("libreoffice binary %s not found: %w", bin, err)
	}
	return &SofficeConverter{bin: path, run: r}, nil
}

// Convert runs soffice --convert-to into a scratch directory next to
// dstPath and moves the produced file into place.
func (s *SofficeConverter) Convert(srcPath, dstPath string) error {
	format := strings.TrimPrefix(filepath.Ext(dstPath), ".")
	if format == "" {
		return fmt.Errorf("destination %s has no extension to convert to", dstPath)
	}

	outDir, err := os.MkdirTemp(filepath.Dir(dstPath), ".soffice-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{"--headless", "--norestore", "--convert-to", format, "--outdir", outDir, srcPath}
	logger.Log.Debug("running soffice", zap.String("bin", s.bin), zap.Strings("args", args))

	out, err := s.run.CombinedOutput(s.bin, args...)
	if err != nil {
		return fmt.Errorf("converting %s with %s: %w: %s", srcPath, filepath.Base(s.bin), err, strings.TrimSpace(string(out)))
	}

	base := filepath.Base(srcPath)
	produced := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+format)
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("%s produced no output for %s: %s", filepath.Base(s.bin), srcPath, strings.TrimSpace(string(out)))
	}
	return moveFile(produced, dstPath)
}
