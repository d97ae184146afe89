// Package grpcutil carries the gRPC-side logging plumbing. Request payloads
// are rendered through the sanitizer so RPC logs get the same secrecy
// guarantees as HTTP logs.
package grpcutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/veilbox/veil/internal/sanitize"
)

// UnaryServerInterceptor logs one line per RPC with the request body masked.
func UnaryServerInterceptor(logger *slog.Logger, sanitizer *sanitize.Sanitizer) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		attrs := []slog.Attr{
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
			slog.Any("request", renderRequest(sanitizer, req)),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
			logger.LogAttrs(ctx, slog.LevelWarn, "RPC failed", attrs...)
		} else {
			logger.LogAttrs(ctx, slog.LevelInfo, "RPC served", attrs...)
		}

		return resp, err
	}
}

// renderRequest converts a protobuf request into a sanitized tree. Anything
// that cannot be rendered is dropped rather than logged raw.
func renderRequest(sanitizer *sanitize.Sanitizer, req any) any {
	msg, ok := req.(proto.Message)
	if !ok {
		return "[unloggable]"
	}

	raw, err := protojson.Marshal(msg)
	if err != nil {
		return "[unloggable]"
	}

	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return "[unloggable]"
	}

	return sanitizer.Fields(node)
}
