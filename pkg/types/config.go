package types

import "time"

// ConversionBackend identifies the tool that renders DOCX to PDF.
type ConversionBackend string

const (
	BackendSoffice   ConversionBackend = "soffice"
	BackendContainer ConversionBackend = "container"
	BackendGotenberg ConversionBackend = "gotenberg"
)

// HTTPConfig holds shared HTTP settings for backends that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendConfig holds settings for the conversion backends.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the conversion tool: soffice, container, or gotenberg.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// SofficeBin is the LibreOffice binary used by the soffice backend.
	SofficeBin string `json:"soffice_bin" yaml:"soffice_bin"`

	// Runtime names the container runtime ("docker" or "podman"). Empty
	// means detect, preferring docker.
	Runtime string `json:"runtime" yaml:"runtime"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image"`

	// GotenbergURL is the base URL of a Gotenberg service.
	GotenbergURL string `json:"gotenberg_url" yaml:"gotenberg_url"`

	// Username and Password are optional basic-auth credentials for Gotenberg.
	Username string `json:"-" yaml:"-"`
	Password string `json:"-" yaml:"-"`
}

// SyncConfig holds settings for a directory sync run.
type SyncConfig struct {
	// InputDir contains the source documents.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives the rendered artifacts. Created if missing.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Force converts every matching file regardless of timestamps.
	Force bool `json:"force" yaml:"force"`

	// SourceExt is the suffix selecting source documents (default ".docx").
	SourceExt string `json:"source_ext" yaml:"source_ext"`

	// TargetExt replaces SourceExt in the destination name (default ".pdf").
	TargetExt string `json:"target_ext" yaml:"target_ext"`
}

// Default extensions for DOCX to PDF conversion.
const (
	DefaultSourceExt = ".docx"
	DefaultTargetExt = ".pdf"
)

// WithDefaults returns a copy of c with empty extensions filled in.
func (c SyncConfig) WithDefaults() SyncConfig {
	if c.SourceExt == "" {
		c.SourceExt = DefaultSourceExt
	}
	if c.TargetExt == "" {
		c.TargetExt = DefaultTargetExt
	}
	return c
}
