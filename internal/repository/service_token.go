package repository

import (
	"context"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type ServiceTokenRepository interface {
	Create(ctx context.Context, token *entity.ServiceToken) error
	GetByKey(ctx context.Context, key string) (*entity.ServiceToken, error)
}

type serviceTokenRepository struct{}

func NewServiceTokenRepository() *serviceTokenRepository {
	return &serviceTokenRepository{}
}

func (r *serviceTokenRepository) Create(ctx context.Context, token *entity.ServiceToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

// GetByKey looks a caller up by the hash of its bearer token.
func (r *serviceTokenRepository) GetByKey(ctx context.Context, key string) (*entity.ServiceToken, error) {
	var record entity.ServiceToken
	if err := xcontext.DB(ctx).Take(&record, "key=?", key).Error; err != nil {
		return nil, err
	}

	return &record, nil
}
