package entity

import (
	"context"

	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&ReputationGrant{},
		&OauthToken{},
		&UserToken{},
		&XstsToken{},
		&ServiceToken{},
	)
}
