package main

import (
	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadConfig(cctx)
	s.loadLogger()
	s.loadDatabase()

	if err := entity.MigrateTable(s.ctx); err != nil {
		return err
	}

	s.logger.Infof("Migration completed")
	return nil
}
