package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	r *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		ctx = xcontext.WithConfigs(ctx, r.cfg)
		ctx = xcontext.WithLogger(ctx, r.logger)
		ctx = xcontext.WithDB(ctx, r.db)
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithHTTPWriter(ctx, w)
		ctx = xcontext.WithResponseAndError(ctx)

		func() {
			if req.Method != method {
				xcontext.SetError(ctx, errorx.New(errorx.NotFound, "Not supported method %s", req.Method))
				return
			}

			for _, middleware := range r.befores {
				newCtx, err := middleware(ctx)
				if newCtx != nil {
					ctx = newCtx
				}
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}
			}

			var request Request
			var err error
			switch method {
			case http.MethodGet:
				err = bindQuery(req.URL.Query(), &request)
			case http.MethodPost:
				err = bindBody(req.Body, &request)
			}
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				xcontext.SetError(ctx, errorx.New(errorx.BadRequest, "Cannot parse the request"))
				return
			}

			// Mutating handlers run inside a database transaction which is
			// committed only if the handler succeeds.
			inTx := method == http.MethodPost
			if inTx {
				ctx = xcontext.WithDBTransaction(ctx)
			}

			resp, err := handler(ctx, &request)
			if err != nil {
				if inTx {
					xcontext.RollbackDBTransaction(ctx)
				}
				xcontext.SetError(ctx, err)
				return
			}

			if inTx {
				if err := xcontext.CommitDBTransaction(ctx); err != nil {
					xcontext.Logger(ctx).Errorf("Cannot commit the transaction: %v", err)
					xcontext.SetError(ctx, errorx.Unknown)
					return
				}
			}
			xcontext.SetResponse(ctx, resp)

			for _, middleware := range r.afters {
				newCtx, err := middleware(ctx)
				if newCtx != nil {
					ctx = newCtx
				}
				if err != nil {
					xcontext.SetError(ctx, err)
					return
				}
			}
		}()

		writeResponse(ctx)

		for _, closer := range r.closers {
			closer(ctx)
		}
	}
}

func bindBody(body io.Reader, out any) error {
	err := json.NewDecoder(body).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
