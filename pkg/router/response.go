package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HaloFunTime/hft-backend-sub001/pkg/errorx"
	"github.com/HaloFunTime/hft-backend-sub001/pkg/xcontext"
)

type errorBody struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func statusOf(code errorx.Code) int {
	switch code {
	case errorx.BadRequest:
		return http.StatusBadRequest
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied, errorx.SelfGrant, errorx.GiverWeeklyCap, errorx.DuplicateInWeek:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.AlreadyExists:
		return http.StatusConflict
	case errorx.TooManyRequests:
		return http.StatusTooManyRequests
	case errorx.BadGateway:
		return http.StatusBadGateway
	case errorx.Unavailable:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func writeResponse(ctx context.Context) {
	w := xcontext.HTTPWriter(ctx)
	w.Header().Set("Content-Type", "application/json")

	if err := xcontext.Error(ctx); err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) {
			errx = errorx.Unknown
		}

		status := statusOf(errx.Code)
		w.WriteHeader(status)
		envelope := errorEnvelope{
			Error: errorBody{
				StatusCode: status,
				Message:    errx.Message,
				Details:    errx.Details,
			},
		}
		if err := json.NewEncoder(w).Encode(envelope); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", err)
		}
		return
	}

	resp := xcontext.Response(ctx)
	if resp == nil {
		resp = struct{}{}
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
