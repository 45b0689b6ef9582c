package main

import (
	"fmt"
	"net/http"

	"github.com/HaloFunTime/hft-backend-sub001/internal/middleware"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadEndpoint()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", s.configs.ApiServer.Host, s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	s.logger.Infof("Starting server on port %s", s.configs.ApiServer.Port)
	cert, key := s.configs.ApiServer.Cert, s.configs.ApiServer.Key
	if cert != "" && key != "" {
		return s.server.ListenAndServeTLS(cert, key)
	}

	return s.server.ListenAndServe()
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithStartTime())
	s.router.Before(middleware.AllowedHosts())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	router.GET(s.router, "/ping/", s.pingDomain.Ping)

	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthenticator(s.serviceTokenRepo).Middleware())
	{
		router.POST(authRouter, "/reputation/plus-rep", s.reputationDomain.PlusRep)
		router.GET(authRouter, "/reputation/check-rep", s.reputationDomain.CheckRep)
		router.GET(authRouter, "/reputation/top-rep", s.reputationDomain.TopRep)
		router.GET(authRouter, "/xbox-live/resolve-gamertag", s.xboxDomain.ResolveGamertag)
	}

	s.router.Handle("/metrics", promhttp.Handler())
}
