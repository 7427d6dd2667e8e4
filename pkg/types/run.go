// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and run records shared by the
// docsync packages.
package types

import "time"

// FileStatus is the outcome of a single source document in a run.
type FileStatus string

const (
	StatusConverted FileStatus = "converted"
	StatusSkipped   FileStatus = "skipped"
	StatusFailed    FileStatus = "failed"
)

// FileResult records what happened to one source document.
type FileResult struct {
	// Name is the source file name within the input directory.
	Name string `json:"name" yaml:"name"`

	// Source is the full path of the source document.
	Source string `json:"source" yaml:"source"`

	// Destination is the full path of the artifact.
	Destination string `json:"destination" yaml:"destination"`

	Status FileStatus `json:"status" yaml:"status"`

	// Error is the failure message. Empty unless Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run describes a finished sync run: its parameters, timing, counts, and
// per-file outcomes. It is what the history store and the report writer
// persist.
type Run struct {
	Config     SyncConfig   `json:"config" yaml:"config"`
	Backend    string       `json:"backend" yaml:"backend"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Found      int          `json:"found" yaml:"found"`
	Converted  int          `json:"converted" yaml:"converted"`
	Skipped    int          `json:"skipped" yaml:"skipped"`
	Failed     int          `json:"failed" yaml:"failed"`
	Files      []FileResult `json:"files" yaml:"files"`
}
