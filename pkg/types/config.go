// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionBackend identifies the tool that performs PDF<->DOCX conversion.
type ConversionBackend string

const (
	BackendSoffice   ConversionBackend = "soffice"
	BackendContainer ConversionBackend = "container"
	BackendGotenberg ConversionBackend = "gotenberg"
)

// OfficeConfig holds settings for the local LibreOffice backend.
type OfficeConfig struct {
	// Path is an explicit soffice binary. Empty means search PATH and the
	// platform install locations.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ContainerConfig holds settings for the containerized LibreOffice backend.
type ContainerConfig struct {
	// Image is the container image that provides soffice.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// GotenbergConfig holds settings for the Gotenberg HTTP backend.
type GotenbergConfig struct {
	// URL is the base URL of the Gotenberg service (e.g. "http://localhost:3000").
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// HistoryConfig controls the opt-in job journal.
type HistoryConfig struct {
	// Enabled turns on recording of every job.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings for the docflow utilities.
type Config struct {
	// Backend selects the conversion tool: soffice, container, or gotenberg.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Timeout bounds a single conversion. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	Soffice   OfficeConfig    `json:"soffice" yaml:"soffice" mapstructure:"soffice"`
	Container ContainerConfig `json:"container" yaml:"container" mapstructure:"container"`
	Gotenberg GotenbergConfig `json:"gotenberg" yaml:"gotenberg" mapstructure:"gotenberg"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
}
