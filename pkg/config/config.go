package config

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the struct mapped from the configuration file. Every field
// defaults to the standard deployment layout, so running without a
// config file at all is fine.
type Config struct {
	ListenAddr       string `mapstructure:"listen_addr"`
	DBPath           string `mapstructure:"db_path"`
	XrayConfigPath   string `mapstructure:"xray_config_path"`
	XrayBinary       string `mapstructure:"xray_binary"`
	XrayStatsServer  string `mapstructure:"xray_stats_server"`
	Protocol         string `mapstructure:"protocol"`
	WhitelistPath    string `mapstructure:"whitelist_path"`
	APIKeyFile       string `mapstructure:"api_key_file"`
	DeployDir        string `mapstructure:"deploy_dir"`
	IdleTimeoutHours int    `mapstructure:"idle_timeout_hours"`
	LogLevel         string `mapstructure:"log_level"`
}

// Load reads vlessadm.toml via viper, searching the working directory
// and the deployment directories unless an explicit path is given.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vlessadm")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/vlessadm")
		v.AddConfigPath("/opt/vless")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Error(err)
			return nil, err
		}
	}
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		log.Error(err)
		return nil, err
	}
	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("db_path", "/opt/vless/vless.db")
	v.SetDefault("xray_config_path", "/usr/local/etc/xray/config.json")
	v.SetDefault("xray_binary", "/usr/local/bin/xray")
	v.SetDefault("xray_stats_server", "127.0.0.1:10085")
	v.SetDefault("protocol", "vless")
	v.SetDefault("whitelist_path", "/opt/vless/whitelist.txt")
	v.SetDefault("api_key_file", "/opt/vless/api_key.txt")
	v.SetDefault("deploy_dir", "/opt/vless")
	v.SetDefault("idle_timeout_hours", 3)
	v.SetDefault("log_level", "info")
}

// IdleTimeout resolves the reaper threshold. The IDLE_TIMEOUT_HOURS
// environment variable overrides the configured value; garbage in either
// place falls back to 3 hours.
func (c *Config) IdleTimeout() time.Duration {
	hours := c.IdleTimeoutHours
	if env := os.Getenv("IDLE_TIMEOUT_HOURS"); env != "" {
		if n, err := strconv.Atoi(env); err == nil {
			hours = n
		}
	}
	if hours <= 0 {
		hours = 3
	}
	return time.Duration(hours) * time.Hour
}

// InitLog applies the configured level to the standard logger.
func (c *Config) InitLog() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
