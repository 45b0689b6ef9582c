package domain

import (
	"context"

	"github.com/HaloFunTime/hft-backend-sub001/internal/common"
	"github.com/HaloFunTime/hft-backend-sub001/internal/domain/xbl"
	"github.com/HaloFunTime/hft-backend-sub001/internal/model"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api/xbox"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type XboxDomain interface {
	ResolveGamertag(ctx context.Context, req *model.ResolveGamertagRequest) (*model.ResolveGamertagResponse, error)
}

type xboxDomain struct {
	chain    *xbl.TokenChain
	endpoint xbox.IEndpoint
}

func NewXboxDomain(chain *xbl.TokenChain, endpoint xbox.IEndpoint) XboxDomain {
	return &xboxDomain{
		chain:    chain,
		endpoint: endpoint,
	}
}

func (d *xboxDomain) ResolveGamertag(
	ctx context.Context, req *model.ResolveGamertagRequest,
) (*model.ResolveGamertagResponse, error) {
	if len(req.Gamertag) == 0 || len(req.Gamertag) > 32 {
		return nil, errorx.New(errorx.BadRequest, "Invalid request").
			WithDetail("gamertag", "must be between 1 and 32 characters")
	}

	token, err := d.chain.XSTSToken(ctx)
	if err != nil {
		return nil, err
	}

	xuid, err := d.endpoint.GetXuidByGamertag(ctx, token.Uhs, token.Token, req.Gamertag)
	if err != nil {
		if resetAt, ok := xbox.IsRateLimit(err); ok {
			xcontext.Logger(ctx).Warnf("Profile lookup rate limited until %s", resetAt)
			return nil, errorx.New(errorx.TooManyRequests, "Too many profile lookups, try again later")
		}
		if status, ok := xbox.IsUpstream(err); ok {
			if status == 404 {
				return nil, errorx.New(errorx.NotFound, "No Xbox Live account for gamertag %s", req.Gamertag)
			}

			xcontext.Logger(ctx).Warnf("Profile lookup failed with status %d", status)
			common.PromCounters[common.XboxUpstreamFailure].WithLabelValues("profile").Inc()
			return nil, errorx.New(errorx.BadGateway, "Xbox Live profile service failed")
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve gamertag: %v", err)
		return nil, errorx.Unknown
	}

	if xuid == "" {
		return nil, errorx.New(errorx.NotFound, "No Xbox Live account for gamertag %s", req.Gamertag)
	}

	return &model.ResolveGamertagResponse{
		Gamertag: req.Gamertag,
		Xuid:     xuid,
	}, nil
}
