// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeAtomic copies r into dstPath through a temporary file in the same
// directory, so a failed render never leaves a partial artifact behind that
// a later incremental run would take for up to date.
func writeAtomic(dstPath string, r io.Reader) error {
	dir, name := filepath.Split(dstPath)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", dstPath, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dstPath, err)
	}
	if n == 0 {
		return fmt.Errorf("converter produced empty output for %s", dstPath)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		return fmt.Errorf("renaming into %s: %w", dstPath, err)
	}
	return nil
}

// moveFile renames src to dst, falling back to a copy when the two paths
// are on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	err = writeAtomic(dst, f)
	f.Close()
	if err != nil {
		return err
	}
	return os.Remove(src)
}
