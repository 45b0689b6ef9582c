package config

import "time"

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	ApiServer  ServerConfigs     `toml:"api_server"`
	Database   DatabaseConfigs   `toml:"database"`
	Redis      RedisConfigs      `toml:"redis"`
	Auth       AuthConfigs       `toml:"auth"`
	Xbox       XboxConfigs       `toml:"xbox"`
	Reputation ReputationConfigs `toml:"reputation"`
}

type ServerConfigs struct {
	Host         string   `toml:"host"`
	Port         string   `toml:"port"`
	AllowedHosts []string `toml:"allowed_hosts"`
	Cert         string   `toml:"cert"`
	Key          string   `toml:"key"`
}

type DatabaseConfigs struct {
	// URL is a DSN accepted by the mysql driver, e.g.
	// user:pass@tcp(host:3306)/hft?charset=utf8mb4&parseTime=True&loc=UTC
	URL string `toml:"url"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return d.URL
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type AuthConfigs struct {
	// SecretKey keys the HMAC under which service tokens are stored at rest.
	SecretKey string `toml:"secret_key"`
}

type XboxConfigs struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Scope        string `toml:"scope"`
	RedirectURI  string `toml:"redirect_uri"`
}

type ReputationConfigs struct {
	GiverWeeklyCap       int           `toml:"giver_weekly_cap"`
	PerReceiverWeeklyCap int           `toml:"per_receiver_weekly_cap"`
	LeaderboardCacheTTL  time.Duration `toml:"leaderboard_cache_ttl"`
}
