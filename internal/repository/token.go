package repository

import (
	"context"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

// Token rows are append only. A regenerated token is inserted as a new row
// and readers pick the freshest one, so a failed refresh never clobbers the
// last working credential.

type OauthTokenRepository interface {
	Create(ctx context.Context, token *entity.OauthToken) error
	Freshest(ctx context.Context) (*entity.OauthToken, error)
}

type oauthTokenRepository struct{}

func NewOauthTokenRepository() *oauthTokenRepository {
	return &oauthTokenRepository{}
}

func (r *oauthTokenRepository) Create(ctx context.Context, token *entity.OauthToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

func (r *oauthTokenRepository) Freshest(ctx context.Context) (*entity.OauthToken, error) {
	var record entity.OauthToken
	err := xcontext.DB(ctx).Order("created_at DESC").Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

type UserTokenRepository interface {
	Create(ctx context.Context, token *entity.UserToken) error
	Freshest(ctx context.Context) (*entity.UserToken, error)
}

type userTokenRepository struct{}

func NewUserTokenRepository() *userTokenRepository {
	return &userTokenRepository{}
}

func (r *userTokenRepository) Create(ctx context.Context, token *entity.UserToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

func (r *userTokenRepository) Freshest(ctx context.Context) (*entity.UserToken, error) {
	var record entity.UserToken
	err := xcontext.DB(ctx).Order("not_after DESC").Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

type XstsTokenRepository interface {
	Create(ctx context.Context, token *entity.XstsToken) error
	Freshest(ctx context.Context) (*entity.XstsToken, error)
}

type xstsTokenRepository struct{}

func NewXstsTokenRepository() *xstsTokenRepository {
	return &xstsTokenRepository{}
}

func (r *xstsTokenRepository) Create(ctx context.Context, token *entity.XstsToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

func (r *xstsTokenRepository) Freshest(ctx context.Context) (*entity.XstsToken, error) {
	var record entity.XstsToken
	err := xcontext.DB(ctx).Order("not_after DESC").Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}
