// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the docflow utilities.
package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Operation identifies the document transformation a job performs.
type Operation string

const (
	OpPDFToDOCX Operation = "pdf-to-docx"
	OpDOCXToPDF Operation = "docx-to-pdf"
	OpUnlock    Operation = "unlock"
)

// OutputName returns the output file name op produces for an input with
// the given base name. Unlocking keeps the PDF extension, so it adds a
// suffix to avoid colliding with the input.
func (op Operation) OutputName(base string) string {
	switch op {
	case OpPDFToDOCX:
		return base + ".docx"
	case OpUnlock:
		return base + "_unlocked.pdf"
	default:
		return base + ".pdf"
	}
}

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpPDFToDOCX, OpDOCXToPDF, OpUnlock:
		return true
	}
	return false
}

// JobStatus indicates the outcome of a single job.
type JobStatus string

const (
	JobConverted JobStatus = "converted"
	JobSkipped   JobStatus = "skipped"
	JobFailed    JobStatus = "failed"
)

// Job is one input/output pair handed to a converter. Jobs live for a
// single invocation; nothing about them persists unless the history
// journal is enabled.
type Job struct {
	// Op is the transformation to apply.
	Op Operation `json:"op" yaml:"op"`

	// Input must reference an existing file before processing begins.
	Input string `json:"input" yaml:"input"`

	// Output is created as a side effect. Existing content is overwritten.
	Output string `json:"output" yaml:"output"`

	// Password is forwarded verbatim to the decryption routine (unlock only).
	Password string `json:"-" yaml:"-"`
}

// Base returns the input file name without directory or extension.
func (j Job) Base() string {
	return strings.TrimSuffix(filepath.Base(j.Input), filepath.Ext(j.Input))
}

// JobResult records how a job ended.
type JobResult struct {
	Job      Job           `json:"job" yaml:"job"`
	Status   JobStatus     `json:"status" yaml:"status"`
	Err      error         `json:"-" yaml:"-"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}
