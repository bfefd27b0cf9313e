package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Room     RoomConfig     `mapstructure:"room"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type GatewayConfig struct {
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	MaxConnsPerAddr   int           `mapstructure:"max_conns_per_addr"`
	MaxFrameBytes     int64         `mapstructure:"max_frame_bytes"`
	RateLimit         int           `mapstructure:"rate_limit"`
	RateWindow        time.Duration `mapstructure:"rate_window"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

type RoomConfig struct {
	MaxPlayers int `mapstructure:"max_players"`
}

type AuthConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("gateway.max_conns_per_addr", 8)
	viper.SetDefault("gateway.max_frame_bytes", 16*1024)
	viper.SetDefault("gateway.rate_limit", 60)
	viper.SetDefault("gateway.rate_window", 10*time.Second)
	viper.SetDefault("gateway.reconcile_interval", time.Minute)
	viper.SetDefault("room.max_players", 4)
	viper.SetDefault("auth.token_ttl", 12*time.Hour)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
