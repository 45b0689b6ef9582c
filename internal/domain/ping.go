package domain

import (
	"context"

	"github.com/HaloFunTime/hft-backend-sub001/internal/model"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type PingDomain interface {
	Ping(ctx context.Context, req *model.PingRequest) (*model.PingResponse, error)
}

type pingDomain struct{}

func NewPingDomain() PingDomain {
	return &pingDomain{}
}

func (d *pingDomain) Ping(ctx context.Context, req *model.PingRequest) (*model.PingResponse, error) {
	var one int
	if err := xcontext.DB(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		xcontext.Logger(ctx).Errorf("Database ping failed: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Database is unreachable")
	}

	return &model.PingResponse{Ping: "pong"}, nil
}
