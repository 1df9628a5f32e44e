package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnv.
const EnvPrefix = "LINKVALIDATOR_"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LookupFunc looks up an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays LINKVALIDATOR_* variables onto c. The store DSN is
// usually provided this way so database passwords stay out of the config
// file.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	e := envReader{lookup: lookup}

	e.str("STORE_DRIVER", &c.StoreDriver)
	e.str("STORE_DSN", &c.StoreDSN)
	e.str("PROXY", &c.ProxyAddress)
	e.str("USER_AGENT", &c.UserAgent)
	e.duration("CONNECT_TIMEOUT", &c.ConnectTimeout)
	e.duration("TOTAL_TIMEOUT", &c.TotalTimeout)
	e.integer("MAX_CONCURRENT", &c.MaxConcurrent)
	e.integer("MAX_REDIRECTS", &c.MaxRedirects)
	e.float("HOST_RATE_LIMIT", &c.HostRateLimit)
	e.str("FILTER", &c.Filter)
	e.str("FORMAT", &c.Format)
	e.str("BASE_URL", &c.BaseURL)
	e.str("LISTEN", &c.ListenAddr)
	e.duration("BUILD_TIMEOUT", &c.BuildTimeout)
	e.boolean("VERBOSE", &c.Verbose)

	return e.err
}

// envReader reads typed values and keeps the first parse error.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(name, value string, err error) {
	e.err = fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidEnv, EnvPrefix, name, value, err)
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) duration(name string, dst *time.Duration) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = d
}

func (e *envReader) integer(name string, dst *int) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(name string, dst *float64) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = f
}

func (e *envReader) boolean(name string, dst *bool) {
	v, ok := e.get(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = b
}
