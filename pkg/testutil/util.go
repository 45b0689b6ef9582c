package testutil

import (
	"context"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/logger"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		Auth: config.AuthConfigs{
			SecretKey: "secret",
		},
		Xbox: config.XboxConfigs{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scope:        "Xboxlive.signin Xboxlive.offline_access",
			RedirectURI:  "https://localhost/oauth",
		},
		Reputation: config.ReputationConfigs{
			GiverWeeklyCap:       3,
			PerReceiverWeeklyCap: 1,
			LeaderboardCacheTTL:  30 * time.Second,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.INFO))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
