package middleware

import (
	"context"
	"strings"

	"github.com/HaloFunTime/hft-backend-sub001/internal/repository"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/crypto"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/router"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type Authenticator struct {
	serviceTokenRepo repository.ServiceTokenRepository
}

func NewAuthenticator(serviceTokenRepo repository.ServiceTokenRepository) *Authenticator {
	return &Authenticator{serviceTokenRepo: serviceTokenRepo}
}

// Middleware verifies the Authorization bearer token against stored service
// tokens. Only the keyed hash of a token is at rest, so lookup hashes first.
func (a *Authenticator) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		authorization := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
		token, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid authorization header")
		}

		secretKey := xcontext.Configs(ctx).Auth.SecretKey
		serviceToken, err := a.serviceTokenRepo.GetByKey(
			ctx, crypto.HMACSHA256([]byte(secretKey), []byte(token)))
		if err != nil {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid token")
		}

		return xcontext.WithRequestUserID(ctx, serviceToken.Name), nil
	}
}
