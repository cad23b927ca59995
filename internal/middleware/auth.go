package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/pkg/httpcontext"
	authUC "github.com/fastygo/kanban/usecase/auth"
)

// Identity headers set for downstream handlers. Values supplied by the client
// are discarded.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"
)

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (authUC.Principal, error)
}

// JWTAuth rejects requests without a valid token for a live session.
func JWTAuth(auth Authenticator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderUserRole)
			ctx.Request.Header.Del(HeaderUserName)

			token := extractToken(ctx)
			if token == "" {
				unauthorized(ctx)
				return
			}

			authCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			principal, err := auth.Authenticate(authCtx, token)
			cancel()
			if err != nil {
				logger.Warn("request rejected", zap.String("path", string(ctx.Path())), zap.Error(err))
				unauthorized(ctx)
				return
			}

			actor := principal.Actor
			ctx.Request.Header.Set(HeaderUserID, actor.UserID)
			ctx.Request.Header.Set(HeaderUserRole, string(actor.Role))
			ctx.Request.Header.Set(HeaderUserName, actor.Name)
			httpcontext.SetActor(ctx, actor)
			httpcontext.SetSessionID(ctx, principal.SessionID)

			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBodyString(`{"status":"error","code":"UNAUTHORIZED","error":"unauthorized"}`)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
