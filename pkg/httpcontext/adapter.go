package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/kanban/domain"
	appLogger "github.com/fastygo/kanban/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyActor      Key = "actor"
)

const (
	actorUserValue   = "kanban.actor"
	sessionUserValue = "kanban.session"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with a deadline
// and request metadata.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach derives a context with the adapter timeout. The request id is echoed
// in the X-Request-ID response header.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if actor, ok := ActorOf(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeyActor, actor)
	}
	return stdCtx, cancel
}

// SetActor attaches the authenticated actor to the request.
func SetActor(ctx *fasthttp.RequestCtx, actor domain.Actor) {
	ctx.SetUserValue(actorUserValue, actor)
}

// ActorOf returns the actor set by the authentication middleware.
func ActorOf(ctx *fasthttp.RequestCtx) (domain.Actor, bool) {
	if ctx == nil {
		return domain.Actor{}, false
	}
	actor, ok := ctx.UserValue(actorUserValue).(domain.Actor)
	return actor, ok && actor.UserID != ""
}

// SetSessionID records the session the request token belongs to.
func SetSessionID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(sessionUserValue, id)
}

func SessionIDOf(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(sessionUserValue).(string)
	return id
}

// ActorFromContext returns the actor stored by Attach.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(KeyActor).(domain.Actor)
	return actor, ok
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID"))); header != "" {
		return header
	}
	return uuid.NewString()
}
