package xbl

import (
	"context"
	"errors"

	"github.com/HaloFunTime/hft-backend-sub001/internal/common"
	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api/xbox"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// TokenChain walks the three-tier Xbox Live credential ladder on demand.
// Every tier is read from the store first; only a missing or expired tier
// triggers an outbound exchange, and concurrent callers of the same tier
// coalesce into one exchange.
type TokenChain struct {
	oauthRepo repository.OauthTokenRepository
	userRepo  repository.UserTokenRepository
	xstsRepo  repository.XstsTokenRepository
	endpoint  xbox.IEndpoint
	clock     dateutil.Clock
	group     singleflight.Group
}

func NewTokenChain(
	oauthRepo repository.OauthTokenRepository,
	userRepo repository.UserTokenRepository,
	xstsRepo repository.XstsTokenRepository,
	endpoint xbox.IEndpoint,
	clock dateutil.Clock,
) *TokenChain {
	return &TokenChain{
		oauthRepo: oauthRepo,
		userRepo:  userRepo,
		xstsRepo:  xstsRepo,
		endpoint:  endpoint,
		clock:     clock,
	}
}

// XSTSToken returns a currently valid tier-3 token, refreshing lower tiers
// as needed.
func (c *TokenChain) XSTSToken(ctx context.Context) (*entity.XstsToken, error) {
	token, err := c.xstsRepo.Freshest(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot load xsts token: %v", err)
		return nil, errorx.Unknown
	}
	if token != nil && !token.Expired(c.clock.Now()) {
		return token, nil
	}

	v, err, _ := c.group.Do("xsts", func() (any, error) {
		// Recheck after winning the flight; the previous winner may have
		// stored a token already.
		token, err := c.xstsRepo.Freshest(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot load xsts token: %v", err)
			return nil, errorx.Unknown
		}
		if token != nil && !token.Expired(c.clock.Now()) {
			return token, nil
		}

		userToken, err := c.UserToken(ctx)
		if err != nil {
			return nil, err
		}

		reply, err := c.endpoint.ExchangeXSTS(ctx, userToken.Token)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot exchange xsts token: %v", err)
			common.PromCounters[common.XboxUpstreamFailure].WithLabelValues("xsts").Inc()
			return nil, errorx.New(errorx.Unavailable, "Cannot acquire an XSTS token")
		}

		token = &entity.XstsToken{
			Base:         entity.Base{ID: uuid.NewString()},
			IssueInstant: reply.IssueInstant,
			NotAfter:     reply.NotAfter,
			Token:        reply.Token,
			Uhs:          reply.Uhs,
		}
		if err := c.xstsRepo.Create(ctx, token); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot store xsts token: %v", err)
			return nil, errorx.Unknown
		}

		return token, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entity.XstsToken), nil
}

// UserToken returns a currently valid tier-2 token.
func (c *TokenChain) UserToken(ctx context.Context) (*entity.UserToken, error) {
	token, err := c.userRepo.Freshest(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot load user token: %v", err)
		return nil, errorx.Unknown
	}
	if token != nil && !token.Expired(c.clock.Now()) {
		return token, nil
	}

	v, err, _ := c.group.Do("user", func() (any, error) {
		token, err := c.userRepo.Freshest(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot load user token: %v", err)
			return nil, errorx.Unknown
		}
		if token != nil && !token.Expired(c.clock.Now()) {
			return token, nil
		}

		oauthToken, err := c.OAuthToken(ctx)
		if err != nil {
			return nil, err
		}

		reply, err := c.endpoint.ExchangeUser(ctx, oauthToken.AccessToken)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot exchange user token: %v", err)
			common.PromCounters[common.XboxUpstreamFailure].WithLabelValues("user").Inc()
			return nil, errorx.New(errorx.Unavailable, "Cannot acquire an Xbox Live user token")
		}

		token = &entity.UserToken{
			Base:         entity.Base{ID: uuid.NewString()},
			IssueInstant: reply.IssueInstant,
			NotAfter:     reply.NotAfter,
			Token:        reply.Token,
			Uhs:          reply.Uhs,
		}
		if err := c.userRepo.Create(ctx, token); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot store user token: %v", err)
			return nil, errorx.Unknown
		}

		return token, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entity.UserToken), nil
}

// OAuthToken returns a currently valid tier-1 token. Unlike the upper tiers
// there is nothing to derive a brand new token from; an expired token is
// refreshed through its refresh token, and an absent row is unrecoverable
// until an operator seeds one.
func (c *TokenChain) OAuthToken(ctx context.Context) (*entity.OauthToken, error) {
	token, err := c.oauthRepo.Freshest(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot load oauth token: %v", err)
		return nil, errorx.Unknown
	}
	if token != nil && !token.Expired(c.clock.Now()) {
		return token, nil
	}

	v, err, _ := c.group.Do("oauth", func() (any, error) {
		token, err := c.oauthRepo.Freshest(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot load oauth token: %v", err)
			return nil, errorx.Unknown
		}

		if token != nil && token.Expired(c.clock.Now()) && token.RefreshToken != "" {
			reply, err := c.endpoint.RefreshOAuth(ctx, token.RefreshToken)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot refresh oauth token: %v", err)
				common.PromCounters[common.XboxUpstreamFailure].WithLabelValues("oauth").Inc()
			} else {
				refreshed := &entity.OauthToken{
					Base:         entity.Base{ID: uuid.NewString()},
					TokenType:    reply.TokenType,
					ExpiresIn:    reply.ExpiresIn,
					Scope:        reply.Scope,
					AccessToken:  reply.AccessToken,
					RefreshToken: reply.RefreshToken,
					UserID:       reply.UserID,
				}
				if err := c.oauthRepo.Create(ctx, refreshed); err != nil {
					xcontext.Logger(ctx).Errorf("Cannot store oauth token: %v", err)
					return nil, errorx.Unknown
				}
				token = refreshed
			}
		}

		if token != nil && !token.Expired(c.clock.Now()) {
			return token, nil
		}

		return nil, errorx.New(errorx.Unavailable, "Cannot acquire an OAuth token")
	})
	if err != nil {
		return nil, err
	}

	return v.(*entity.OauthToken), nil
}
