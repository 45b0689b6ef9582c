package main

import (
	"fmt"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/crypto"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func (s *srv) startTokenIssue(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()
	s.loadRepos()

	token, err := crypto.GenerateRandomString()
	if err != nil {
		return err
	}

	err = s.serviceTokenRepo.Create(s.ctx, &entity.ServiceToken{
		Base: entity.Base{ID: uuid.NewString()},
		Name: cctx.String("name"),
		Key:  crypto.HMACSHA256([]byte(s.configs.Auth.SecretKey), []byte(token)),
	})
	if err != nil {
		return err
	}

	// The plain token is printed exactly once.
	fmt.Println(token)
	return nil
}
