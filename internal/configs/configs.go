package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "DROPCALC"

type Config struct {
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	API    APIConfig    `json:"api" yaml:"api" mapstructure:"api"`
	ENS    ENSConfig    `json:"ens" yaml:"ens" mapstructure:"ens"`
	Price  PriceConfig  `json:"price" yaml:"price" mapstructure:"price"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr" mapstructure:"addr"`                            // 监听地址
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`    // 读超时
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"` // 写超时
}

type APIConfig struct {
	BaseURL      string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`                // 质押 API 地址
	ProjectsPath string        `json:"projects_path" yaml:"projects_path" mapstructure:"projects_path"` // 项目列表路径
	WalletPath   string        `json:"wallet_path" yaml:"wallet_path" mapstructure:"wallet_path"`       // 钱包指标路径
	Timeout      time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`                   // 单次请求超时
	RetryCount   int           `json:"retry_count" yaml:"retry_count" mapstructure:"retry_count"`       // 失败重试次数
}

type ENSConfig struct {
	RPCURL   string        `json:"rpc_url" yaml:"rpc_url" mapstructure:"rpc_url"`       // 以太坊节点
	Registry string        `json:"registry" yaml:"registry" mapstructure:"registry"`    // ENS 注册表合约
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`       // 单次调用超时
	MaxTries uint          `json:"max_tries" yaml:"max_tries" mapstructure:"max_tries"` // 最大尝试次数
}

type PriceConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`             // 是否展示参考价格
	QuoteAsset string `json:"quote_asset" yaml:"quote_asset" mapstructure:"quote_asset"` // 计价资产
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

var defaults = map[string]interface{}{
	"server.addr":          ":8080",
	"server.read_timeout":  "15s",
	"server.write_timeout": "30s",
	"api.base_url":         "https://api.staking.mocaverse.xyz",
	"api.projects_path":    "/api/mocadrop/projects/",
	"api.wallet_path":      "/api/staking/user",
	"api.timeout":          "10s",
	"api.retry_count":      3,
	"ens.rpc_url":          "https://rpc.ankr.com/eth",
	"ens.registry":         "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e",
	"ens.timeout":          "4s",
	"ens.max_tries":        3,
	"price.enabled":        false,
	"price.quote_asset":    "USDT",
	"log.level":            "info",
	"log.development":      false,
}

// LoadDotEnv loads KEY=VALUE files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path (optional), applies defaults and DROPCALC_* environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is empty")
	}
	if !govalidator.IsRequestURL(cfg.API.BaseURL) {
		return fmt.Errorf("invalid api.base_url: %q", cfg.API.BaseURL)
	}
	if !strings.HasPrefix(cfg.API.ProjectsPath, "/") || !strings.HasPrefix(cfg.API.WalletPath, "/") {
		return errors.New("api paths must start with /")
	}
	if !govalidator.IsRequestURL(cfg.ENS.RPCURL) {
		return fmt.Errorf("invalid ens.rpc_url: %q", cfg.ENS.RPCURL)
	}
	if !common.IsHexAddress(cfg.ENS.Registry) {
		return fmt.Errorf("invalid ens.registry: %q", cfg.ENS.Registry)
	}
	if cfg.API.Timeout <= 0 || cfg.ENS.Timeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if cfg.API.RetryCount < 0 {
		return errors.New("invalid api.retry_count")
	}
	if cfg.ENS.MaxTries == 0 {
		return errors.New("ens.max_tries must be at least 1")
	}
	return nil
}
