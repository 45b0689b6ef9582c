package xbl

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api/xbox"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/testutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newChain(endpoint xbox.IEndpoint, clock dateutil.Clock) *TokenChain {
	return NewTokenChain(
		repository.NewOauthTokenRepository(),
		repository.NewUserTokenRepository(),
		repository.NewXstsTokenRepository(),
		endpoint,
		clock,
	)
}

func seedOauthToken(ctx context.Context, createdAt time.Time, expiresIn int, refreshToken string) {
	err := xcontext.DB(ctx).Create(&entity.OauthToken{
		Base:         entity.Base{ID: "oauth-seed", CreatedAt: createdAt},
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		Scope:        "Xboxlive.signin Xboxlive.offline_access",
		AccessToken:  "access-seed",
		RefreshToken: refreshToken,
		UserID:       "user-1",
	}).Error
	if err != nil {
		panic(err)
	}
}

func Test_TokenChain_LazyRefresh(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	// Only an expired OAuth row with a usable refresh token.
	seedOauthToken(ctx, now.Add(-2*time.Hour), 3600, "refresh-seed")

	var calls []string
	endpoint := &xbox.MockEndpoint{
		RefreshOAuthFunc: func(ctx context.Context, refreshToken string) (*xbox.OAuthReply, error) {
			calls = append(calls, "refresh")
			require.Equal(t, "refresh-seed", refreshToken)
			return &xbox.OAuthReply{
				TokenType:    "bearer",
				ExpiresIn:    3600,
				Scope:        "Xboxlive.signin Xboxlive.offline_access",
				AccessToken:  "access-new",
				RefreshToken: "refresh-new",
				UserID:       "user-1",
			}, nil
		},
		ExchangeUserFunc: func(ctx context.Context, accessToken string) (*xbox.XTokenReply, error) {
			calls = append(calls, "user")
			require.Equal(t, "access-new", accessToken)
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "user-token",
				Uhs:          "uhs-1",
			}, nil
		},
		ExchangeXSTSFunc: func(ctx context.Context, userToken string) (*xbox.XTokenReply, error) {
			calls = append(calls, "xsts")
			require.Equal(t, "user-token", userToken)
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "xsts-token",
				Uhs:          "uhs-1",
			}, nil
		},
	}

	chain := newChain(endpoint, dateutil.Frozen(now))
	token, err := chain.XSTSToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "xsts-token", token.Token)
	require.False(t, token.Expired(now))
	require.Equal(t, []string{"refresh", "user", "xsts"}, calls)

	var oauthCount, userCount, xstsCount int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.OauthToken{}).Count(&oauthCount).Error)
	require.NoError(t, xcontext.DB(ctx).Model(&entity.UserToken{}).Count(&userCount).Error)
	require.NoError(t, xcontext.DB(ctx).Model(&entity.XstsToken{}).Count(&xstsCount).Error)
	require.EqualValues(t, 2, oauthCount) // seed + refreshed
	require.EqualValues(t, 1, userCount)
	require.EqualValues(t, 1, xstsCount)

	freshest, err := repository.NewXstsTokenRepository().Freshest(ctx)
	require.NoError(t, err)
	require.False(t, freshest.Expired(now))
}

func Test_TokenChain_FreshXstsShortCircuits(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	err := xcontext.DB(ctx).Create(&entity.XstsToken{
		Base:         entity.Base{ID: "xsts-seed"},
		IssueInstant: now.Add(-time.Hour),
		NotAfter:     now.Add(15 * time.Hour),
		Token:        "xsts-seed-token",
		Uhs:          "uhs-1",
	}).Error
	require.NoError(t, err)

	// A MockEndpoint without funcs panics on any call.
	chain := newChain(&xbox.MockEndpoint{}, dateutil.Frozen(now))
	token, err := chain.XSTSToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "xsts-seed-token", token.Token)
}

func Test_TokenChain_FreshOauthSkipsRefresh(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	seedOauthToken(ctx, now.Add(-time.Minute), 3600, "refresh-seed")

	var calls []string
	endpoint := &xbox.MockEndpoint{
		ExchangeUserFunc: func(ctx context.Context, accessToken string) (*xbox.XTokenReply, error) {
			calls = append(calls, "user")
			require.Equal(t, "access-seed", accessToken)
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "user-token",
				Uhs:          "uhs-1",
			}, nil
		},
		ExchangeXSTSFunc: func(ctx context.Context, userToken string) (*xbox.XTokenReply, error) {
			calls = append(calls, "xsts")
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "xsts-token",
				Uhs:          "uhs-1",
			}, nil
		},
	}

	chain := newChain(endpoint, dateutil.Frozen(now))
	_, err := chain.XSTSToken(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"user", "xsts"}, calls)
}

func Test_TokenChain_ConcurrentCallersCoalesce(t *testing.T) {
	ctx := testutil.MockContext()
	sqlDB, err := xcontext.DB(ctx).DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	now := time.Now().In(dateutil.Zone())
	seedOauthToken(ctx, now.Add(-2*time.Hour), 3600, "refresh-seed")

	var refreshCalls, userCalls, xstsCalls atomic.Int32
	endpoint := &xbox.MockEndpoint{
		RefreshOAuthFunc: func(ctx context.Context, refreshToken string) (*xbox.OAuthReply, error) {
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			return &xbox.OAuthReply{
				TokenType:    "bearer",
				ExpiresIn:    3600,
				Scope:        "Xboxlive.signin Xboxlive.offline_access",
				AccessToken:  "access-new",
				RefreshToken: "refresh-new",
				UserID:       "user-1",
			}, nil
		},
		ExchangeUserFunc: func(ctx context.Context, accessToken string) (*xbox.XTokenReply, error) {
			userCalls.Add(1)
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "user-token",
				Uhs:          "uhs-1",
			}, nil
		},
		ExchangeXSTSFunc: func(ctx context.Context, userToken string) (*xbox.XTokenReply, error) {
			xstsCalls.Add(1)
			return &xbox.XTokenReply{
				IssueInstant: now,
				NotAfter:     now.Add(16 * time.Hour),
				Token:        "xsts-token",
				Uhs:          "uhs-1",
			}, nil
		},
	}

	chain := newChain(endpoint, dateutil.Frozen(now))

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := chain.XSTSToken(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// One outbound exchange per tier no matter how many callers raced.
	require.EqualValues(t, 1, refreshCalls.Load())
	require.EqualValues(t, 1, userCalls.Load())
	require.EqualValues(t, 1, xstsCalls.Load())

	var userCount, xstsCount int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.UserToken{}).Count(&userCount).Error)
	require.NoError(t, xcontext.DB(ctx).Model(&entity.XstsToken{}).Count(&xstsCount).Error)
	require.EqualValues(t, 1, userCount)
	require.EqualValues(t, 1, xstsCount)
}

func Test_TokenChain_NoOauthSeed(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	chain := newChain(&xbox.MockEndpoint{}, dateutil.Frozen(now))
	_, err := chain.XSTSToken(ctx)
	require.Error(t, err)
	require.Equal(t, errorx.Unavailable, err.(errorx.Error).Code)
}

func Test_TokenChain_UpstreamFailurePropagates(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	seedOauthToken(ctx, now.Add(-2*time.Hour), 3600, "refresh-seed")

	endpoint := &xbox.MockEndpoint{
		RefreshOAuthFunc: func(ctx context.Context, refreshToken string) (*xbox.OAuthReply, error) {
			return nil, xbox.UpstreamError{StatusCode: 400}
		},
	}

	chain := newChain(endpoint, dateutil.Frozen(now))
	_, err := chain.XSTSToken(ctx)
	require.Error(t, err)
	require.Equal(t, errorx.Unavailable, err.(errorx.Error).Code)

	// The failed refresh must not clobber the seeded row.
	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.OauthToken{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
