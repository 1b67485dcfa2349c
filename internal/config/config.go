package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type OAuth struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	AuthURL      string   `mapstructure:"auth_url"`
	TokenURL     string   `mapstructure:"token_url"`
	UserInfoURL  string   `mapstructure:"userinfo_url"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`
}

func (o OAuth) Enabled() bool {
	return o.ClientID != "" && o.AuthURL != "" && o.TokenURL != ""
}

type Config struct {
	Port           int                           `mapstructure:"port"`
	ClusterURL     string                        `mapstructure:"cluster_url"`
	ClusterTimeout time.Duration                 `mapstructure:"cluster_timeout"`
	PollInterval   time.Duration                 `mapstructure:"poll_interval"`
	BannerTTL      time.Duration                 `mapstructure:"banner_ttl"`
	TableRows      int                           `mapstructure:"table_rows"`
	PageSize       int                           `mapstructure:"page_size"`
	DetailRate     float64                       `mapstructure:"detail_rate"`
	DetailBurst    int                           `mapstructure:"detail_burst"`
	DBPath         string                        `mapstructure:"db_path"`
	JWTSecret      string                        `mapstructure:"jwt_secret"`
	SessionTTL     time.Duration                 `mapstructure:"session_ttl"`
	OAuth          OAuth                         `mapstructure:"oauth"`
	Sentinels      map[string]map[string]float64 `mapstructure:"sentinels"`
}

var Default = Config{
	Port:           8000,
	ClusterURL:     "http://localhost:6880",
	ClusterTimeout: 10 * time.Second,
	PollInterval:   30 * time.Second,
	BannerTTL:      15 * time.Second,
	TableRows:      20,
	PageSize:       25,
	DetailRate:     5,
	DetailBurst:    10,
	DBPath:         "olweb.db",
	SessionTTL:     24 * time.Hour,
}

func Load(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home dir: %w", err)
		}

		configDir := filepath.Join(home, ".olweb")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config dir: %w", err)
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir)
	}

	viper.SetDefault("port", Default.Port)
	viper.SetDefault("cluster_url", Default.ClusterURL)
	viper.SetDefault("cluster_timeout", Default.ClusterTimeout)
	viper.SetDefault("poll_interval", Default.PollInterval)
	viper.SetDefault("banner_ttl", Default.BannerTTL)
	viper.SetDefault("table_rows", Default.TableRows)
	viper.SetDefault("page_size", Default.PageSize)
	viper.SetDefault("detail_rate", Default.DetailRate)
	viper.SetDefault("detail_burst", Default.DetailBurst)
	viper.SetDefault("db_path", Default.DBPath)
	viper.SetDefault("session_ttl", Default.SessionTTL)

	viper.SetEnvPrefix("OLWEB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Watch reloads the config whenever the file changes on disk and hands
// the fresh copy to onChange. Reload errors are swallowed so a half-saved
// file cannot take the daemon down; the previous config stays in effect.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return
		}
		onChange(&cfg)
	})
	viper.WatchConfig()
}
