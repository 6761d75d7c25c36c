// Package actions holds the side-effecting operations a graph transition can
// name. Names are bound to Go handlers in a Registry, which is checked
// against the loaded graph at startup.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
	logx "github.com/subscription-bot/server/pkg/logger"
)

// ErrHandled marks an action failure the handler already reported to the
// user. The engine logs it and keeps the session where it was.
var ErrHandled = errors.New("reported to user")

// Replier lets an action talk back within the message being processed.
type Replier interface {
	Reply(ctx context.Context, text string) (int, error)
	Edit(ctx context.Context, msgID int, text string) error
	Delete(ctx context.Context, msgID int) error
	NotifyOperators(ctx context.Context, text string)
}

// Input is what a handler sees for one triggering message.
type Input struct {
	Session  *model.Session
	Text     string
	Username string
	Graph    *model.Graph
	Reply    Replier
}

// Handler mutates the session and may emit a signal for chaining.
type Handler func(ctx context.Context, in *Input) (model.Signal, error)

type Deps struct {
	Records model.RecordStore
	Now     func() time.Time
}

type Registry struct {
	handlers map[string]Handler
	deps     Deps
}

// NewRegistry returns a registry with every built-in action bound.
func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	r := &Registry{handlers: map[string]Handler{}, deps: deps}
	r.Register("save_name", capture("name"))
	r.Register("save_address", capture("address"))
	r.Register("save_phone", capture("phone"))
	r.Register("save_subscription_type", capture("sub_type"))
	r.Register("save_issues", capture("issues"))
	r.Register("save_delivery", capture("delivery"))
	r.Register("append_address", appendAddress)
	r.Register("clear_data", clearData)
	r.Register("calc_price", calcPrice)
	r.Register("lookup_history", r.lookupHistory)
	r.Register("submit_to_excel", r.submit)
	return r
}

// Register binds name to h. Registering a name twice is a programming error.
func (r *Registry) Register(name string, h Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("action %q already registered", name))
	}
	r.handlers[name] = h
}

// Validate fails when the graph references an action with no handler.
func (r *Registry) Validate(g *model.Graph) error {
	var unknown []string
	for _, name := range g.Actions() {
		if _, ok := r.handlers[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errx.Configf("unknown actions: %s", strings.Join(unknown, ", "))
}

// Execute runs the named action. An empty or unknown name is a no-op.
func (r *Registry) Execute(ctx context.Context, name string, in *Input) (model.Signal, error) {
	if name == "" {
		return model.NoSignal, nil
	}
	h, ok := r.handlers[name]
	if !ok {
		logx.Warn().Str("action", name).Msg("unknown action, skipping")
		return model.NoSignal, nil
	}
	logx.Debug().Str("action", name).Int64("user_id", in.Session.UserID).Msg("running action")
	return h(ctx, in)
}
