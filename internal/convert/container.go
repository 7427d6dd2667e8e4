// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docsync/internal/container"
)

// DefaultImage is the LibreOffice image used by the container backend.
// Any image with soffice and sh on PATH works.
const DefaultImage = "libreoffice:latest"

// containerScript renders stdin with soffice inside the container and
// writes the artifact to stdout. %[1]s is the source extension, %[2]s the
// target format.
const containerScript = `set -e
cd /tmp
cat > in%[1]s
soffice --headless --norestore --convert-to %[2]s --outdir /tmp /tmp/in%[1]s >&2
cat /tmp/in.%[2]s`

// ContainerConverter renders documents by piping them through a LibreOffice
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that uses rt to run image
// (DefaultImage when empty). It verifies that the image exists locally
// before returning.
func NewContainerConverter(rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("image %s not available in %s: %w", image, rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

// Convert pipes srcPath through the container and writes the rendered
// output to dstPath.
func (c *ContainerConverter) Convert(srcPath, dstPath string) error {
	format := strings.TrimPrefix(filepath.Ext(dstPath), ".")
	if format == "" {
		return fmt.Errorf("destination %s has no extension to convert to", dstPath)
	}

	srcExt := filepath.Ext(srcPath)
	if !plainExt(srcExt) || !plainExt("."+format) {
		return fmt.Errorf("unsupported extension for container conversion: %s -> %s", srcExt, format)
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer f.Close()

	script := fmt.Sprintf(containerScript, srcExt, format)
	var out bytes.Buffer
	if err := c.runtime.Run(c.image, []string{"sh", "-c", script}, f, &out); err != nil {
		return fmt.Errorf("converting %s in %s: %w", srcPath, c.runtime.Name(), err)
	}
	return writeAtomic(dstPath, &out)
}

// plainExt reports whether ext is a dot followed by letters and digits only,
// which keeps it safe to splice into the container script.
func plainExt(ext string) bool {
	if len(ext) < 2 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}
