package middleware

import (
	"context"
	"net"

	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/router"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// AllowedHosts rejects requests addressed to an unexpected Host header. An
// empty allow list accepts everything, which is the development default.
func AllowedHosts() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		allowed := xcontext.Configs(ctx).ApiServer.AllowedHosts
		if len(allowed) == 0 {
			return nil, nil
		}

		host := xcontext.HTTPRequest(ctx).Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		if !slices.Contains(allowed, host) {
			return nil, errorx.New(errorx.BadRequest, "Invalid host header")
		}

		return nil, nil
	}
}
