package config

import (
	"fmt"
	stdlog "log"
	"net"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/queryinspect/queryinspect/utils"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/log"
	"github.com/pkg/errors"
)

type Config struct {
	Address          string  `toml:"address" json:"address"`
	AdvertiseAddress string  `toml:"advertise-address" json:"advertise_address"`
	Log              Log     `toml:"log" json:"log"`
	Storage          Storage `toml:"storage" json:"storage"`
	Inspect          Inspect `toml:"inspect" json:"inspect"`
}

var defaultConfig = Config{
	Address: "0.0.0.0:12080",
	Log: Log{
		Path:  "", // default output is stdout
		Level: "INFO",
	},
	Storage: Storage{
		Path: "data",
	},
	Inspect: Inspect{
		Enabled:     true,
		LogStats:    true,
		HeaderStats: true,
		Threshold: Threshold{
			Medium: 3,
			High:   20,
		},
	},
}

func GetDefaultConfig() Config {
	return defaultConfig
}

func InitConfig(configPath string, override func(config *Config)) (*Config, error) {
	config := defaultConfig

	if len(configPath) > 0 {
		if err := config.Load(configPath); err != nil {
			return nil, err
		}
	}

	override(&config)

	config.trimFieldSpace()
	config.setDefaultAdvertiseAddress()

	if err := config.valid(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) trimFieldSpace() {
	c.Address = strings.TrimSpace(c.Address)
	c.AdvertiseAddress = strings.TrimSpace(c.AdvertiseAddress)
}

func (c *Config) Load(fileName string) error {
	_, err := toml.DecodeFile(fileName, c)
	return err
}

func (c *Config) setDefaultAdvertiseAddress() {
	if len(c.AdvertiseAddress) == 0 && strings.HasPrefix(c.Address, "0.0.0.0") {
		ip := utils.GetLocalIP()
		c.AdvertiseAddress = strings.Replace(c.Address, "0.0.0.0", ip, 1)
	}
	if len(c.AdvertiseAddress) == 0 {
		c.AdvertiseAddress = c.Address
	}
}

func (c *Config) valid() error {
	var err error

	if err = validateAddress(c.Address, "address"); err != nil {
		return err
	}

	if err = validateAddress(c.AdvertiseAddress, "advertise-address"); err != nil {
		return err
	}

	if err = c.Log.valid(); err != nil {
		return err
	}

	if err = c.Storage.valid(); err != nil {
		return err
	}

	if err = c.Inspect.valid(); err != nil {
		return err
	}

	return nil
}

func validateAddress(address, name string) error {
	if len(address) == 0 {
		return fmt.Errorf("unexpected empty %v", name)
	}
	_, port, err := net.SplitHostPort(address)
	if err == nil {
		var p int
		p, err = strconv.Atoi(port)
		if err == nil && p == 0 {
			err = fmt.Errorf("port cannot be set to 0")
		}
	}
	if err != nil {
		return fmt.Errorf("%v %v is invalid, err: %v", name, address, err)
	}
	return nil
}

type Storage struct {
	Path string `toml:"path" json:"path"`
}

func (s *Storage) valid() error {
	if len(s.Path) == 0 {
		return fmt.Errorf("unexpected empty storage path")
	}

	return nil
}

type Log struct {
	Path  string `toml:"path" json:"path"`
	Level string `toml:"level" json:"level"`
}

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

func (l *Log) valid() error {
	if len(l.Level) == 0 {
		return fmt.Errorf("unexpected empty log level")
	}

	switch l.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("log level should be %s, %s, %s or %s", LevelDebug, LevelInfo, LevelWarn, LevelError)
	}

	return nil
}

func (l *Log) InitDefaultLogger() {
	cfg := &log.Config{Level: strings.ToLower(l.Level)}
	if l.Path != "" {
		cfg.File = log.FileLogConfig{Filename: path.Join(l.Path, "queryinspect.log")}
	}

	logger, p, err := log.InitLogger(cfg)
	if err != nil {
		stdlog.Fatalf("Failed to init logger, err: %v", err)
	}
	log.ReplaceGlobals(logger, p)
}

// Threshold holds the duplicate-count boundaries for severity
// classification. Medium is intentionally not required to be below
// High; the HIGH boundary is always checked first, so a misconfigured
// pair still classifies deterministically.
type Threshold struct {
	Medium int `toml:"medium" json:"medium"`
	High   int `toml:"high" json:"high"`
}

// Inspect is the query inspection configuration. It is read once at
// startup, validated, and then shared read-only by every request-scoped
// engine instance.
type Inspect struct {
	Enabled             bool      `toml:"enabled" json:"enabled"`
	LogStats            bool      `toml:"log-stats" json:"log_stats"`
	HeaderStats         bool      `toml:"header-stats" json:"header_stats"`
	LogQueries          bool      `toml:"log-queries" json:"log_queries"`
	LogTracebacks       bool      `toml:"log-tracebacks" json:"log_tracebacks"`
	TracebackRoots      []string  `toml:"traceback-roots" json:"traceback_roots"`
	StddevMultiplier    float64   `toml:"stddev-multiplier" json:"stddev_multiplier"`
	AbsoluteLimitMillis int64     `toml:"absolute-limit-millis" json:"absolute_limit_millis"`
	Threshold           Threshold `toml:"threshold" json:"threshold"`
	IgnorePatterns      []string  `toml:"ignore-patterns" json:"ignore_patterns"`

	ignoreRegexps []*regexp.Regexp
}

func (i *Inspect) valid() error {
	return i.CompileIgnorePatterns()
}

// CompileIgnorePatterns compiles the configured ignore patterns. A
// malformed pattern is a startup error, never a per-request one.
func (i *Inspect) CompileIgnorePatterns() error {
	i.ignoreRegexps = i.ignoreRegexps[:0]
	for _, pattern := range i.IgnorePatterns {
		// anchored at the start of the path, like re.match
		re, err := regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return errors.Wrapf(err, "invalid ignore pattern %q", pattern)
		}
		i.ignoreRegexps = append(i.ignoreRegexps, re)
	}
	return nil
}

// IgnorePath reports whether requests for the given path are excluded
// from inspection entirely.
func (i *Inspect) IgnorePath(path string) bool {
	for _, re := range i.ignoreRegexps {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
