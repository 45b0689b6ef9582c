package main

import (
	"context"
	"net/http"

	"github.com/HaloFunTime/hft-backend-sub001/config"
	"github.com/HaloFunTime/hft-backend-sub001/internal/domain"
	"github.com/HaloFunTime/hft-backend-sub001/internal/domain/xbl"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api/xbox"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/logger"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/router"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger
	db      *gorm.DB

	redisClient  xredis.Client
	xboxEndpoint xbox.IEndpoint
	clock        dateutil.Clock

	userRepo         repository.UserRepository
	grantRepo        repository.ReputationGrantRepository
	oauthTokenRepo   repository.OauthTokenRepository
	userTokenRepo    repository.UserTokenRepository
	xstsTokenRepo    repository.XstsTokenRepository
	serviceTokenRepo repository.ServiceTokenRepository

	tokenChain *xbl.TokenChain

	pingDomain       domain.PingDomain
	reputationDomain domain.ReputationDomain
	xboxDomain       domain.XboxDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(logger.LevelFromString(s.configs.LogLevel))
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, s.db)
}

func (s *srv) loadRedis() {
	if s.configs.Redis.Addr == "" {
		s.logger.Warnf("No redis address configured, leaderboard cache disabled")
		return
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
	s.redisClient = client
}

func (s *srv) loadEndpoint() {
	s.xboxEndpoint = xbox.New(s.configs.Xbox)
	s.clock = dateutil.NewClock()
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.grantRepo = repository.NewReputationGrantRepository()
	s.oauthTokenRepo = repository.NewOauthTokenRepository()
	s.userTokenRepo = repository.NewUserTokenRepository()
	s.xstsTokenRepo = repository.NewXstsTokenRepository()
	s.serviceTokenRepo = repository.NewServiceTokenRepository()
}

func (s *srv) loadDomains() {
	s.tokenChain = xbl.NewTokenChain(
		s.oauthTokenRepo, s.userTokenRepo, s.xstsTokenRepo, s.xboxEndpoint, s.clock)

	s.pingDomain = domain.NewPingDomain()
	s.reputationDomain = domain.NewReputationDomain(
		s.userRepo, s.grantRepo, s.redisClient, s.clock)
	s.xboxDomain = domain.NewXboxDomain(s.tokenChain, s.xboxEndpoint)
}
