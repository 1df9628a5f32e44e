package config

import (
	"maps"
	"strings"
	"time"
)

// File represents the structure of the .linkvalidator configuration file.
// Every setting is optional; unset values keep the current configuration.
type File struct {
	Probe  ProbeSection  `yaml:"probe,omitempty"`
	Build  BuildSection  `yaml:"build,omitempty"`
	Store  StoreSection  `yaml:"store,omitempty"`
	Report ReportSection `yaml:"report,omitempty"`
	Server ServerSection `yaml:"server,omitempty"`

	// Hosts maps host names to host-specific probe settings.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults applies to every host listed in Hosts unless overridden.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// ProbeSection holds the probe policy settings of the config file.
type ProbeSection struct {
	ConnectTimeout  time.Duration `yaml:"connect_timeout,omitempty"`
	TotalTimeout    time.Duration `yaml:"total_timeout,omitempty"`
	FollowRedirects *bool         `yaml:"follow_redirects,omitempty"`
	MaxRedirects    *int          `yaml:"max_redirects,omitempty"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	MaxConcurrent   int           `yaml:"max_concurrent,omitempty"`
	HostRateLimit   float64       `yaml:"host_rate_limit,omitempty"`
	HostBurst       int           `yaml:"host_burst,omitempty"`
	Proxy           string        `yaml:"proxy,omitempty"`
}

// BuildSection holds the report build settings of the config file.
type BuildSection struct {
	ItemConcurrency    int   `yaml:"item_concurrency,omitempty"`
	BatchSize          int   `yaml:"batch_size,omitempty"`
	AbortOnLookupError *bool `yaml:"abort_on_lookup_error,omitempty"`
}

// StoreSection holds the content store settings of the config file.
type StoreSection struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// ReportSection holds the rendering settings of the config file.
type ReportSection struct {
	Filter          string  `yaml:"filter,omitempty"`
	Format          string  `yaml:"format,omitempty"`
	RowsPerSheet    int     `yaml:"rows_per_sheet,omitempty"`
	ShowEmptyItems  *bool   `yaml:"show_empty_items,omitempty"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	ItemURLTemplate *string `yaml:"item_url_template,omitempty"`
	CSVComma        string  `yaml:"csv_comma,omitempty"`
}

// ServerSection holds the HTTP server settings of the config file.
type ServerSection struct {
	Listen       string         `yaml:"listen,omitempty"`
	BuildTimeout *time.Duration `yaml:"build_timeout,omitempty"`
}

// HostConfig holds host-specific probe settings, for example credentials
// for a course site that hides documents behind a login.
type HostConfig struct {
	// Cookie is sent as the Cookie header.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in probes to this host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// GetHostConfig returns the configuration for host merged with defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := HostConfig{
		Cookie:  cf.Defaults.Cookie,
		Headers: maps.Clone(cf.Defaults.Headers),
	}

	if hc, ok := cf.Hosts[host]; ok {
		if hc.Cookie != "" {
			result.Cookie = hc.Cookie
		}
		if len(hc.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string, len(hc.Headers))
			}
			maps.Copy(result.Headers, hc.Headers)
		}
	}

	return result
}

// HostHeaders returns the probe headers of every configured host, keyed by
// lower-cased host name. A cookie becomes the Cookie header.
func (cf *File) HostHeaders() map[string]map[string]string {
	if len(cf.Hosts) == 0 {
		return nil
	}

	out := make(map[string]map[string]string, len(cf.Hosts))
	for host := range cf.Hosts {
		hc := cf.GetHostConfig(host)
		headers := make(map[string]string, len(hc.Headers)+1)
		maps.Copy(headers, hc.Headers)
		if hc.Cookie != "" {
			headers["Cookie"] = hc.Cookie
		}
		if len(headers) > 0 {
			out[strings.ToLower(host)] = headers
		}
	}
	return out
}

// Apply overlays the settings present in the file onto c.
func (cf *File) Apply(c *Config) {
	p := cf.Probe
	setDuration(&c.ConnectTimeout, p.ConnectTimeout)
	setDuration(&c.TotalTimeout, p.TotalTimeout)
	setBool(&c.FollowRedirects, p.FollowRedirects)
	if p.MaxRedirects != nil {
		c.MaxRedirects = *p.MaxRedirects
	}
	setString(&c.UserAgent, p.UserAgent)
	setInt(&c.MaxConcurrent, p.MaxConcurrent)
	if p.HostRateLimit != 0 {
		c.HostRateLimit = p.HostRateLimit
	}
	setInt(&c.HostBurst, p.HostBurst)
	setString(&c.ProxyAddress, p.Proxy)

	setInt(&c.ItemConcurrency, cf.Build.ItemConcurrency)
	setInt(&c.BatchSize, cf.Build.BatchSize)
	setBool(&c.AbortOnLookupError, cf.Build.AbortOnLookupError)

	setString(&c.StoreDriver, cf.Store.Driver)
	setString(&c.StoreDSN, cf.Store.DSN)

	r := cf.Report
	setString(&c.Filter, r.Filter)
	setString(&c.Format, r.Format)
	setInt(&c.RowsPerSheet, r.RowsPerSheet)
	setBool(&c.ShowEmptyItems, r.ShowEmptyItems)
	setString(&c.BaseURL, r.BaseURL)
	if r.ItemURLTemplate != nil {
		c.ItemURLTemplate = *r.ItemURLTemplate
	}
	setString(&c.CSVComma, r.CSVComma)

	setString(&c.ListenAddr, cf.Server.Listen)
	if cf.Server.BuildTimeout != nil {
		c.BuildTimeout = *cf.Server.BuildTimeout
	}

	c.Hosts = cf
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
