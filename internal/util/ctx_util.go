package util

import (
	"context"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/token"
)

func GetTokenPayloadFromContext(ctx context.Context) *token.Payload {
	if v, ok := ctx.Value(constants.AuthorizationPayloadKey).(*token.Payload); ok {
		return v
	}
	return nil
}

func WithTokenPayload(ctx context.Context, payload *token.Payload) context.Context {
	return context.WithValue(ctx, constants.AuthorizationPayloadKey, payload)
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return "unknown"
}
