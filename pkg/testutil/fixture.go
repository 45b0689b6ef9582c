package testutil

import (
	"context"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/google/uuid"
)

// InsertUser creates a user row with a fixed creation time so ordering
// assertions in leaderboard tests are deterministic.
func InsertUser(ctx context.Context, discordID, username string, createdAt time.Time) *entity.User {
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: createdAt,
		},
		DiscordID: discordID,
		Username:  username,
	}
	if err := xcontext.DB(ctx).Create(user).Error; err != nil {
		panic(err)
	}

	return user
}

func InsertGrant(ctx context.Context, giverID, receiverID string, createdAt time.Time) *entity.ReputationGrant {
	grant := &entity.ReputationGrant{
		Base: entity.Base{
			ID:        uuid.NewString(),
			CreatedAt: createdAt,
		},
		GiverID:    giverID,
		ReceiverID: receiverID,
	}
	if err := xcontext.DB(ctx).Create(grant).Error; err != nil {
		panic(err)
	}

	return grant
}
