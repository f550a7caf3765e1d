package auth

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// authenticates the "authorization" metadata with g. The [AuthContext] is
// available to handlers through [FromContext].
func UnaryServerInterceptor(g *Guard) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := g.authenticateRPC(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor is the streaming counterpart of [UnaryServerInterceptor].
func StreamServerInterceptor(g *Guard) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := g.authenticateRPC(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: ctx})
	}
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}

func (g *Guard) authenticateRPC(ctx context.Context) (context.Context, error) {
	var a attempt
	var incomingID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("authorization"); len(v) > 0 {
			a.token = bearerToken(v[0])
		}
		if v := md.Get("x-request-id"); len(v) > 0 {
			incomingID = v[0]
		}
	}
	a.requestID = requestIDFrom(incomingID)
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		a.client = hostOnly(p.Addr.String())
	}

	ac, err := g.authenticate(ctx, a)
	if err != nil {
		return nil, status.Error(codeFor(err), err.Error())
	}
	return WithAuthContext(ctx, ac), nil
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, ErrTooManyAttempts):
		return codes.ResourceExhausted
	case errors.Is(err, ErrForbidden):
		return codes.PermissionDenied
	default:
		return codes.Unauthenticated
	}
}
