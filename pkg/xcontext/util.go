package xcontext

import "context"

type (
	requestUserKey struct{}
	responseKey    struct{}
	errorKey       struct{}
)

type responseBox struct {
	resp any
}

type errorBox struct {
	err error
}

// WithResponseAndError prepares the mutable response and error slots. The
// router calls this once per request; handlers and middlewares write through
// SetResponse and SetError afterwards.
func WithResponseAndError(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, responseKey{}, &responseBox{})
	return context.WithValue(ctx, errorKey{}, &errorBox{})
}

func SetResponse(ctx context.Context, resp any) {
	if box, ok := ctx.Value(responseKey{}).(*responseBox); ok {
		box.resp = resp
	}
}

func Response(ctx context.Context) any {
	if box, ok := ctx.Value(responseKey{}).(*responseBox); ok {
		return box.resp
	}

	return nil
}

func SetError(ctx context.Context, err error) {
	if box, ok := ctx.Value(errorKey{}).(*errorBox); ok {
		box.err = err
	}
}

func Error(ctx context.Context) error {
	if box, ok := ctx.Value(errorKey{}).(*errorBox); ok {
		return box.err
	}

	return nil
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestUserKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(requestUserKey{}).(string)
	if !ok {
		return ""
	}

	return id
}
