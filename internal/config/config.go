package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/joho/godotenv"
)

// ErrConfig는 설정 파일 또는 필수 자격 증명 오류를 나타내는 sentinel error다.
var ErrConfig = errors.New("config error")

// 자격 증명 환경변수 이름.
const (
	EnvLookupKey   = "ONELOOKUP_API_KEY"
	EnvProxyHost   = "MT_PROXY_HOST"
	EnvProxyPort   = "MT_PROXY_PORT"
	EnvProxyUser   = "MT_PROXY_USER"
	EnvProxyPass   = "MT_PROXY_PASS"
	EnvIPInfoToken = "IPINFO_TOKEN"
)

// Config는 mt 설정 파일의 최상위 구조체다.
type Config struct {
	Version            int              `toml:"version"`
	BookmarksFile      string           `toml:"bookmarks_file"`
	EnvsDir            string           `toml:"envs_dir"`
	Python             string           `toml:"python"`
	LargeFileThreshold string           `toml:"large_file_threshold"`
	TimeoutSeconds     int              `toml:"timeout_seconds"`
	Retries            *int             `toml:"retries"`
	Theme              string           `toml:"theme"`
	Editor             string           `toml:"editor"`
	RCFile             string           `toml:"rc_file"`
	Proxy              ProxyConfig      `toml:"proxy"`
	Lookup             LookupConfig     `toml:"lookup"`
	Reputation         ReputationConfig `toml:"reputation"`
}

// ProxyConfig는 프록시 URL 생성에 필요한 값이다.
// User/Pass는 파일에 두지 않고 환경변수로만 받는다.
type ProxyConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	Scheme string `toml:"scheme"`
	Script string `toml:"script"`
	User   string `toml:"-"`
	Pass   string `toml:"-"`
}

// LookupConfig는 lookup API 클라이언트 설정이다.
type LookupConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// ReputationConfig는 IP 평판 조회 설정이다. URL의 %s 자리에 IP가 들어간다.
type ReputationConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"-"`
}

// DefaultDir는 설정 디렉토리(~/.config/mrtamaki)를 반환한다.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "mrtamaki")
}

// DefaultPath는 기본 config.toml 경로다.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Default는 설정 파일 없이 사용할 기본 설정을 반환한다.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults(DefaultDir())
	return cfg
}

// Load는 config.toml을 파싱하여 Config를 반환한다.
// 파일이 없으면 기본값을 사용한다. 같은 디렉토리의 .env를 먼저 읽어
// 환경변수로 올린 뒤(기존 값은 덮어쓰지 않음) 자격 증명을 환경변수에서 채운다.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %v: %w", err, ErrConfig)
	}

	cfg := &Config{Version: 1}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: %v: %w", err, ErrConfig)
	}
	cfg.applyDefaults(dir)
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Timeout은 네트워크 호출 1회당 제한 시간이다.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryCount는 재시도 횟수다 (첫 시도 제외).
func (c *Config) RetryCount() int {
	if c.Retries == nil {
		return 2
	}
	return *c.Retries
}

// ThresholdBytes는 large_file_threshold를 바이트로 변환한다.
func (c *Config) ThresholdBytes() (int64, error) {
	n, err := units.FromHumanSize(c.LargeFileThreshold)
	if err != nil {
		return 0, fmt.Errorf("config.ThresholdBytes: %q: %v: %w", c.LargeFileThreshold, err, ErrConfig)
	}
	return n, nil
}

// RequireLookupKey는 lookup API 키를 반환한다. 없으면 ErrConfig.
func (c *Config) RequireLookupKey() (string, error) {
	if c.Lookup.APIKey == "" {
		return "", fmt.Errorf("%s is not set (or [lookup] api_key in config): %w", EnvLookupKey, ErrConfig)
	}
	return c.Lookup.APIKey, nil
}

// RequireProxy는 프록시 URL 생성에 필요한 값이 모두 있는지 확인한다.
func (c *Config) RequireProxy() error {
	var missing []string
	if c.Proxy.Host == "" {
		missing = append(missing, EnvProxyHost)
	}
	if c.Proxy.User == "" {
		missing = append(missing, EnvProxyUser)
	}
	if c.Proxy.Pass == "" {
		missing = append(missing, EnvProxyPass)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing proxy credentials: %s: %w", strings.Join(missing, ", "), ErrConfig)
	}
	return nil
}

func (c *Config) applyDefaults(dir string) {
	if c.BookmarksFile == "" {
		c.BookmarksFile = filepath.Join(dir, "bookmarks.json")
	}
	if c.EnvsDir == "" {
		c.EnvsDir = filepath.Join(dir, "envs")
	}
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.LargeFileThreshold == "" {
		c.LargeFileThreshold = "100MB"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Theme == "" {
		c.Theme = "default"
	}
	if c.RCFile == "" {
		c.RCFile = "~/.zshrc"
	}
	if c.Proxy.Scheme == "" {
		c.Proxy.Scheme = "http"
	}
	if c.Lookup.BaseURL == "" {
		c.Lookup.BaseURL = "https://app.1lookup.io/api"
	}
	if c.Reputation.URL == "" {
		c.Reputation.URL = "https://ipinfo.io/%s/json"
	}
	c.BookmarksFile = expandHome(c.BookmarksFile)
	c.EnvsDir = expandHome(c.EnvsDir)
	c.RCFile = expandHome(c.RCFile)
	c.Proxy.Script = expandHome(c.Proxy.Script)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLookupKey); v != "" {
		c.Lookup.APIKey = v
	}
	if v := os.Getenv(EnvProxyHost); v != "" {
		c.Proxy.Host = v
	}
	if v := os.Getenv(EnvProxyPort); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			c.Proxy.Port = port
		} else {
			c.Proxy.Port = -1
		}
	}
	c.Proxy.User = os.Getenv(EnvProxyUser)
	c.Proxy.Pass = os.Getenv(EnvProxyPass)
	c.Reputation.Token = os.Getenv(EnvIPInfoToken)
	if c.Editor == "" {
		c.Editor = os.Getenv("EDITOR")
	}
	if c.Editor == "" {
		c.Editor = "vi"
	}
}

func (c *Config) validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config.Load: timeout_seconds must be positive: %w", ErrConfig)
	}
	if c.RetryCount() < 0 || c.RetryCount() > 5 {
		return fmt.Errorf("config.Load: retries must be between 0 and 5: %w", ErrConfig)
	}
	if c.Proxy.Port < 0 || c.Proxy.Port > 65535 {
		return fmt.Errorf("config.Load: proxy port out of range: %w", ErrConfig)
	}
	switch c.Proxy.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return fmt.Errorf("config.Load: unsupported proxy scheme %q: %w", c.Proxy.Scheme, ErrConfig)
	}
	if _, err := c.ThresholdBytes(); err != nil {
		return err
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
