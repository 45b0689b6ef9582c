package main

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) loadConfig(cctx *cli.Context) {
	cfg := config.Configs{
		Env:      "development",
		LogLevel: "INFO",
		ApiServer: config.ServerConfigs{
			Host: "localhost",
			Port: "8000",
		},
		Xbox: config.XboxConfigs{
			Scope:       "Xboxlive.signin Xboxlive.offline_access",
			RedirectURI: "http://localhost/auth/callback",
		},
		Reputation: config.ReputationConfigs{
			GiverWeeklyCap:       3,
			PerReceiverWeeklyCap: 1,
			LeaderboardCacheTTL:  time.Minute,
		},
	}

	if path := cctx.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			panic(err)
		}
	}

	cfg.Env = getEnv("ENVIRONMENT", cfg.Env)
	cfg.LogLevel = getEnv("API_LOG_LEVEL", cfg.LogLevel)
	cfg.ApiServer.Host = getEnv("HOST", cfg.ApiServer.Host)
	cfg.ApiServer.Port = getEnv("PORT", cfg.ApiServer.Port)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Auth.SecretKey = getEnv("SECRET_KEY", cfg.Auth.SecretKey)
	cfg.Xbox.ClientID = getEnv("AZURE_CLIENT_ID", cfg.Xbox.ClientID)
	cfg.Xbox.ClientSecret = getEnv("AZURE_CLIENT_SECRET", cfg.Xbox.ClientSecret)
	if hosts := os.Getenv("ALLOWED_HOSTS"); hosts != "" {
		cfg.ApiServer.AllowedHosts = strings.Split(hosts, ",")
	}

	s.configs = &cfg
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
