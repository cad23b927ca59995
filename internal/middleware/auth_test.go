package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	authUC "github.com/fastygo/kanban/usecase/auth"
)

type stubAuthenticator struct {
	token     string
	principal authUC.Principal
}

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (authUC.Principal, error) {
	if token != s.token {
		return authUC.Principal{}, domain.ErrUnauthorized
	}
	return s.principal, nil
}

func runJWTAuth(authorization string, extra map[string]string) (*fasthttp.RequestCtx, bool) {
	auth := stubAuthenticator{
		token: "good",
		principal: authUC.Principal{
			Actor:     domain.Actor{UserID: "u1", Name: "Ana", Role: domain.RoleUser},
			SessionID: "s1",
		},
	}

	var ctx fasthttp.RequestCtx
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	for k, v := range extra {
		ctx.Request.Header.Set(k, v)
	}

	called := false
	JWTAuth(auth, nil)(func(*fasthttp.RequestCtx) { called = true })(&ctx)
	return &ctx, called
}

func TestJWTAuthAcceptsBearerToken(t *testing.T) {
	for _, header := range []string{"Bearer good", "bearer good", "good"} {
		ctx, called := runJWTAuth(header, nil)
		assert.True(t, called, header)

		actor, ok := httpcontext.ActorOf(ctx)
		assert.True(t, ok)
		assert.Equal(t, "u1", actor.UserID)
		assert.Equal(t, "s1", httpcontext.SessionIDOf(ctx))
		assert.Equal(t, "user", string(ctx.Request.Header.Peek(HeaderUserRole)))
	}
}

func TestJWTAuthRejects(t *testing.T) {
	for _, header := range []string{"", "Bearer bad"} {
		ctx, called := runJWTAuth(header, nil)
		assert.False(t, called)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), "UNAUTHORIZED")
	}
}

func TestJWTAuthDiscardsClientIdentityHeaders(t *testing.T) {
	ctx, called := runJWTAuth("", map[string]string{HeaderUserID: "admin", HeaderUserRole: "admin"})
	assert.False(t, called)
	assert.Empty(t, ctx.Request.Header.Peek(HeaderUserID))
	assert.Empty(t, ctx.Request.Header.Peek(HeaderUserRole))

	ctx, called = runJWTAuth("Bearer good", map[string]string{HeaderUserRole: "admin"})
	assert.True(t, called)
	assert.Equal(t, "user", string(ctx.Request.Header.Peek(HeaderUserRole)))
}
