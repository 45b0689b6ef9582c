package domain

import (
	"context"
	"testing"
	"time"

	"github.com/HaloFunTime/hft-backend-sub001/internal/domain/xbl"
	"github.com/HaloFunTime/hft-backend-sub001/internal/entity"
	"github.com/HaloFunTime/hft-backend-sub001/internal/model"
	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/api/xbox"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/dateutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/testutil"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_xboxDomain_ResolveGamertag(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	err := xcontext.DB(ctx).Create(&entity.XstsToken{
		Base:         entity.Base{ID: "xsts-seed"},
		IssueInstant: now.Add(-time.Hour),
		NotAfter:     now.Add(15 * time.Hour),
		Token:        "xsts-token",
		Uhs:          "uhs-1",
	}).Error
	require.NoError(t, err)

	endpoint := &xbox.MockEndpoint{
		GetXuidByGamertagFunc: func(ctx context.Context, uhs, xstsToken, gamertag string) (string, error) {
			require.Equal(t, "uhs-1", uhs)
			require.Equal(t, "xsts-token", xstsToken)
			require.Equal(t, "Gravemind", gamertag)
			return "2814660312221330", nil
		},
	}

	chain := xbl.NewTokenChain(
		repository.NewOauthTokenRepository(),
		repository.NewUserTokenRepository(),
		repository.NewXstsTokenRepository(),
		endpoint,
		dateutil.Frozen(now),
	)

	d := NewXboxDomain(chain, endpoint)
	resp, err := d.ResolveGamertag(ctx, &model.ResolveGamertagRequest{Gamertag: "Gravemind"})
	require.NoError(t, err)
	require.Equal(t, "Gravemind", resp.Gamertag)
	require.Equal(t, "2814660312221330", resp.Xuid)
}

func Test_xboxDomain_ResolveGamertag_NotFound(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now().In(dateutil.Zone())

	err := xcontext.DB(ctx).Create(&entity.XstsToken{
		Base:         entity.Base{ID: "xsts-seed"},
		IssueInstant: now.Add(-time.Hour),
		NotAfter:     now.Add(15 * time.Hour),
		Token:        "xsts-token",
		Uhs:          "uhs-1",
	}).Error
	require.NoError(t, err)

	endpoint := &xbox.MockEndpoint{
		GetXuidByGamertagFunc: func(ctx context.Context, uhs, xstsToken, gamertag string) (string, error) {
			return "", xbox.UpstreamError{StatusCode: 404}
		},
	}

	chain := xbl.NewTokenChain(
		repository.NewOauthTokenRepository(),
		repository.NewUserTokenRepository(),
		repository.NewXstsTokenRepository(),
		endpoint,
		dateutil.Frozen(now),
	)

	d := NewXboxDomain(chain, endpoint)
	_, err = d.ResolveGamertag(ctx, &model.ResolveGamertagRequest{Gamertag: "NoSuchPlayer"})
	require.Error(t, err)
	require.Equal(t, errorx.NotFound, err.(errorx.Error).Code)
}
