package repository

import (
	"context"
	"errors"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Ensure(ctx context.Context, discordID, username string) (*entity.User, error)
	GetByDiscordID(ctx context.Context, discordID string) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

// Ensure upserts the user identified by discordID, refreshing the stored
// username when it changed.
func (r *userRepository) Ensure(ctx context.Context, discordID, username string) (*entity.User, error) {
	var record entity.User
	err := xcontext.DB(ctx).Take(&record, "discord_id=?", discordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = entity.User{
			Base:      entity.Base{ID: uuid.NewString()},
			DiscordID: discordID,
			Username:  username,
		}
		if err := xcontext.DB(ctx).Create(&record).Error; err != nil {
			return nil, err
		}

		return &record, nil
	}

	if err != nil {
		return nil, err
	}

	if record.Username != username {
		err := xcontext.DB(ctx).Model(&entity.User{}).
			Where("discord_id=?", discordID).
			Update("username", username).Error
		if err != nil {
			return nil, err
		}
		record.Username = username
	}

	return &record, nil
}

func (r *userRepository) GetByDiscordID(ctx context.Context, discordID string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Take(&record, "discord_id=?", discordID).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
