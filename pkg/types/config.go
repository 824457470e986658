package types

import "time"

// HTTPConfig holds shared settings for outbound requests to arXiv.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every upstream request
	// (e.g. "arxiv-assistant/0.3").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 and 503 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// StorageConfig locates the paper store on disk.
type StorageConfig struct {
	// Path is the storage root. Artifacts live at <Path>/<id>.md and
	// source documents at <Path>/<id>.pdf.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// CatalogFile is the SQLite catalog file name, relative to Path
	// unless absolute.
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" mapstructure:"catalog_file"`
}

// ConversionBackend identifies the PDF-to-text tool.
type ConversionBackend string

const (
	BackendMarkitdown ConversionBackend = "markitdown"
	BackendPdftotext  ConversionBackend = "pdftotext"
)

// ConversionConfig selects and bounds the conversion step.
type ConversionConfig struct {
	// Backend selects the conversion tool: markitdown or pdftotext.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MaxPages rejects source documents longer than this (0 disables the check).
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// DownloadConfig bounds the orchestration pipeline.
type DownloadConfig struct {
	// StepTimeout bounds the metadata fetch, the document download, and the
	// conversion individually.
	StepTimeout time.Duration `json:"step_timeout" yaml:"step_timeout" mapstructure:"step_timeout"`

	// Concurrency is the number of papers the batch CLI processes at once.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// RequestLogging enables the echo request logger.
	RequestLogging bool `json:"request_logging" yaml:"request_logging" mapstructure:"request_logging"`

	// APIToken, when set, is required as a bearer token on /tools routes.
	APIToken string `json:"-" yaml:"-" mapstructure:"api_token"`
}

// Config groups every setting the binary reads at startup.
type Config struct {
	HTTP       HTTPConfig       `json:"http" yaml:"http" mapstructure:"http"`
	Storage    StorageConfig    `json:"storage" yaml:"storage" mapstructure:"storage"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Download   DownloadConfig   `json:"download" yaml:"download" mapstructure:"download"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}
