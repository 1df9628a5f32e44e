package config

import (
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/nao1215/linkvalidator/internal/model"
	"github.com/nao1215/linkvalidator/internal/probe"
	"github.com/nao1215/linkvalidator/internal/report"
	"github.com/nao1215/linkvalidator/internal/server"
	"github.com/nao1215/linkvalidator/internal/store"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkvalidator"

	// DefaultDatabaseFile is the SQLite file name under the data directory.
	DefaultDatabaseFile = "linkvalidator.db"

	// DefaultItemConcurrency validates items one at a time; the probe pool
	// still runs up to MaxConcurrent requests.
	DefaultItemConcurrency = 1

	// DefaultBatchSize is the number of courses built concurrently.
	DefaultBatchSize = 2

	// DefaultFormat is the output format of the report command.
	DefaultFormat = "text"

	// DefaultBuildTimeout bounds one report build in the server.
	DefaultBuildTimeout = 5 * time.Minute
)

// Config holds all configuration options for linkvalidator.
// This struct is populated from defaults, the config file, the environment
// and CLI flags, and passed through the application via dependency
// injection rather than global state.
type Config struct {
	// === Targets ===

	// Courses is the list of course ids to build reports for.
	Courses []string

	// Filter is "all" or "errorsonly".
	Filter string

	// === Probe policy ===

	// ConnectTimeout bounds dialing and the TLS handshake.
	ConnectTimeout time.Duration

	// TotalTimeout bounds a whole probe including redirects.
	TotalTimeout time.Duration

	// FollowRedirects makes probes report the final status of a redirect chain.
	FollowRedirects bool

	// MaxRedirects is the number of hops followed before a probe fails.
	MaxRedirects int

	// UserAgent is the User-Agent header sent with probes.
	UserAgent string

	// MaxConcurrent is the size of the process-wide probe pool.
	MaxConcurrent int

	// HostRateLimit is the number of probes per second per host. 0 disables it.
	HostRateLimit float64

	// HostBurst is the burst of the per-host limiter.
	HostBurst int

	// ProxyAddress routes probes through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// === Build ===

	// ItemConcurrency is the number of items validated concurrently per course.
	ItemConcurrency int

	// BatchSize is the number of courses built concurrently.
	BatchSize int

	// AbortOnLookupError fails the build when an item's content cannot be
	// loaded instead of skipping the item.
	AbortOnLookupError bool

	// === Store ===

	// StoreDriver is "sqlite" or "postgres".
	StoreDriver string

	// StoreDSN is the SQLite file path or the PostgreSQL connection string.
	StoreDSN string

	// === Rendering ===

	// Format is the output format name.
	Format string

	// ReportFile is the output file path. Empty writes to stdout.
	// With several courses a file name is derived per course.
	ReportFile string

	// RowsPerSheet is the number of data rows per spreadsheet page.
	RowsPerSheet int

	// ShowEmptyItems renders items without URLs in the interactive views.
	ShowEmptyItems bool

	// BaseURL is the course site root used for item links.
	BaseURL string

	// ItemURLTemplate builds item links from {module} and {id}.
	ItemURLTemplate string

	// CSVComma is the separator of the csv format.
	CSVComma string

	// === Server ===

	// ListenAddr is the HTTP listen address of the serve command.
	ListenAddr string

	// BuildTimeout bounds one report build in the server. 0 disables it.
	BuildTimeout time.Duration

	// === General ===

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .linkvalidator in the current
	// directory, the home directory and the XDG config directory.
	ConfigFilePath string

	// Hosts holds per-host probe settings loaded from the config file.
	Hosts *File
}

// NewConfig creates a new Config with default values.
// We use a constructor function instead of relying on zero values because
// many defaults are non-zero (timeouts, pool sizes, paths).
func NewConfig() *Config {
	policy := probe.DefaultPolicy()
	sheet := report.DefaultSheetPolicy()
	view := report.DefaultViewOptions()

	return &Config{
		Filter:          model.FilterAll.String(),
		ConnectTimeout:  policy.ConnectTimeout,
		TotalTimeout:    policy.TotalTimeout,
		FollowRedirects: policy.FollowRedirects,
		MaxRedirects:    policy.MaxRedirects,
		UserAgent:       policy.UserAgent,
		MaxConcurrent:   policy.MaxConcurrent,
		HostBurst:       policy.HostBurst,
		ItemConcurrency: DefaultItemConcurrency,
		BatchSize:       DefaultBatchSize,
		StoreDriver:     store.DriverSQLite,
		StoreDSN:        DefaultDatabasePath(),
		Format:          DefaultFormat,
		RowsPerSheet:    sheet.RowsPerSheet,
		ShowEmptyItems:  view.ShowEmptyItems,
		ItemURLTemplate: view.ItemURLTemplate,
		CSVComma:        `\t`,
		ListenAddr:      server.DefaultAddr,
		BuildTimeout:    DefaultBuildTimeout,
	}
}

// XDGDataDir returns the XDG data directory for linkvalidator.
// On Linux: ~/.local/share/linkvalidator
// On macOS: ~/Library/Application Support/linkvalidator
// On Windows: %LOCALAPPDATA%\linkvalidator
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkvalidator.
// On Linux: ~/.config/linkvalidator
// On macOS: ~/Library/Application Support/linkvalidator
// On Windows: %APPDATA%\linkvalidator
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDatabasePath returns the SQLite store path under the data directory.
func DefaultDatabasePath() string {
	return filepath.Join(XDGDataDir(), DefaultDatabaseFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if _, err := model.ParseFilter(c.Filter); err != nil {
		return ErrInvalidFilter
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return ErrInvalidFormat
	}
	if err := c.ProbePolicy().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProbePolicy, err)
	}
	if c.ItemConcurrency <= 0 {
		return ErrInvalidItemConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.StoreDriver != store.DriverSQLite && c.StoreDriver != store.DriverPostgres {
		return ErrInvalidStoreDriver
	}
	if c.StoreDSN == "" {
		return ErrEmptyStoreDSN
	}
	if err := c.SheetPolicy().Validate(); err != nil {
		return ErrInvalidRowsPerSheet
	}
	if _, err := parseComma(c.CSVComma); err != nil {
		return err
	}
	if c.BuildTimeout < 0 {
		return ErrInvalidBuildTimeout
	}
	return nil
}

// ValidateForReport validates the configuration of the report command,
// which additionally needs at least one course.
func (c *Config) ValidateForReport() error {
	if len(c.Courses) == 0 {
		return ErrNoCourse
	}
	return c.Validate()
}

// ParsedFilter returns the validated report filter.
func (c *Config) ParsedFilter() (model.Filter, error) {
	return model.ParseFilter(c.Filter)
}

// ParsedFormat returns the validated output format.
func (c *Config) ParsedFormat() (report.Format, error) {
	return report.ParseFormat(c.Format)
}

// ProbePolicy returns the probe policy described by the configuration.
func (c *Config) ProbePolicy() probe.Policy {
	p := probe.DefaultPolicy()
	p.ConnectTimeout = c.ConnectTimeout
	p.TotalTimeout = c.TotalTimeout
	p.FollowRedirects = c.FollowRedirects
	p.MaxRedirects = c.MaxRedirects
	p.UserAgent = c.UserAgent
	p.MaxConcurrent = c.MaxConcurrent
	p.HostRateLimit = c.HostRateLimit
	p.HostBurst = c.HostBurst
	p.ProxyAddress = c.ProxyAddress
	if c.Hosts != nil {
		p.HostHeaders = c.Hosts.HostHeaders()
	}
	return p
}

// StoreOptions returns the content store options.
func (c *Config) StoreOptions() store.Options {
	opts := store.DefaultOptions(c.StoreDSN)
	opts.Driver = c.StoreDriver
	return opts
}

// SheetPolicy returns the spreadsheet pagination policy.
func (c *Config) SheetPolicy() report.SheetPolicy {
	p := report.DefaultSheetPolicy()
	p.RowsPerSheet = c.RowsPerSheet
	return p
}

// RenderOptions returns the writer options for every output format.
// The comma has been checked by Validate; an invalid one falls back to a tab.
func (c *Config) RenderOptions(version string) report.Options {
	opts := report.DefaultOptions()
	opts.View.ShowEmptyItems = c.ShowEmptyItems
	opts.View.BaseURL = c.BaseURL
	opts.View.ItemURLTemplate = c.ItemURLTemplate
	opts.Sheet = c.SheetPolicy()
	opts.Version = version
	if comma, err := parseComma(c.CSVComma); err == nil {
		opts.CSVComma = comma
	}
	return opts
}

// parseComma turns the configured separator into a rune. "tab" and the
// two-character escape \t both mean a tab.
func parseComma(s string) (rune, error) {
	switch s {
	case "", `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, ErrInvalidCSVComma
	}
	return r, nil
}
