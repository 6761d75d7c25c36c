// Package engine drives per-user dialogue sessions over a graph loaded at
// startup, relays free text to the operator channel and serves the
// operator-side commands.
package engine

import (
	"context"
	"errors"
	"fmt"
	"html"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/actions"
	"github.com/subscription-bot/server/internal/dialogue/model"
	"github.com/subscription-bot/server/internal/dialogue/threads"
	logx "github.com/subscription-bot/server/pkg/logger"
)

type Config struct {
	// OperatorChatID is the shared operator channel; zero disables relay.
	OperatorChatID int64
	AdminIDs       []int64
	// MediaDir resolves relative image paths.
	MediaDir string
}

// Deps wires an Engine. A non-nil GraphErr starts the engine degraded: every
// interaction answers with a configuration error screen.
type Deps struct {
	Graph     *model.Graph
	GraphErr  error
	Actions   *actions.Registry
	Sessions  model.SessionStore
	Threads   *threads.Directory
	Transport Transport
	Config    Config
}

type Engine struct {
	graph    *model.Graph
	graphErr error
	actions  *actions.Registry
	sessions model.SessionStore
	threads  *threads.Directory
	tr       Transport
	cfg      Config
}

func New(d Deps) *Engine {
	if d.Threads == nil {
		d.Threads = threads.New()
	}
	if d.Graph == nil && d.GraphErr == nil {
		d.GraphErr = errx.Configf("no dialogue graph loaded")
	}
	return &Engine{
		graph:    d.Graph,
		graphErr: d.GraphErr,
		actions:  d.Actions,
		sessions: d.Sessions,
		threads:  d.Threads,
		tr:       d.Transport,
		cfg:      d.Config,
	}
}

// Degraded reports the configuration error the engine started with.
func (e *Engine) Degraded() error {
	return e.graphErr
}

// Handle processes one update. It never panics: failures are logged and
// reported to the operator channel.
func (e *Engine) Handle(ctx context.Context, upd Update) {
	ctx = logx.WithCorrelation(ctx, uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			logx.Ctx(ctx).Error().
				Int64("user_id", upd.From.ID).
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic while handling update")
			e.notifyOperators(ctx, fmt.Sprintf(textDiagAction, upd.From.ID, "-", "-",
				html.EscapeString(fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack()))))
			e.send(ctx, upd.ChatID, OutMessage{Text: textActionFailed})
		}
	}()

	switch {
	case e.cfg.OperatorChatID != 0 && upd.ChatID == e.cfg.OperatorChatID:
		e.handleOperator(ctx, upd)
	case upd.Callback != nil:
		e.handleCallback(ctx, upd)
	default:
		e.handleMessage(ctx, upd)
	}
}

func (e *Engine) handleMessage(ctx context.Context, upd Update) {
	text := upd.Text
	logx.Ctx(ctx).Debug().Int64("user_id", upd.From.ID).Str("text", text).Msg("inbound message")

	switch command(text) {
	case "/start":
		e.Reset(ctx, upd)
		return
	case "/id":
		role := textIsUser
		if e.isAdmin(upd.From.ID) {
			role = textIsAdmin
		}
		e.send(ctx, upd.ChatID, OutMessage{Text: fmt.Sprintf(textUserID, upd.From.ID, role), HTML: true})
		return
	case "/help":
		e.send(ctx, upd.ChatID, OutMessage{Text: textUserHelp})
		return
	}

	if e.graphErr != nil {
		e.sendConfigError(ctx, upd.ChatID)
		return
	}
	if strings.TrimSpace(text) == "" {
		// Stickers, files and the like carry no text to match or relay.
		logx.Ctx(ctx).Debug().Int64("user_id", upd.From.ID).Msg("ignoring message without text")
		return
	}

	sess, err := e.sessions.Get(ctx, upd.From.ID)
	if err != nil {
		logx.Ctx(ctx).Error().Err(err).Int64("user_id", upd.From.ID).Msg("failed to load session")
		e.send(ctx, upd.ChatID, OutMessage{Text: textActionFailed})
		return
	}

	if sess == nil || sess.CurrentNode == "" {
		sess = e.recoverSession(ctx, upd)
		if sess == nil {
			return
		}
	}

	node := e.graph.Node(sess.CurrentNode)
	if node == nil {
		e.reportNodeResolution(ctx, upd, sess, errx.NodeResolution(sess.CurrentNode))
		return
	}

	if t, ok := node.Match(text); ok {
		e.transition(ctx, upd, sess, t)
		return
	}

	if sess.Mode == model.ModeInDialogue {
		if err := e.relay(ctx, upd, sess, text, true); err != nil {
			e.send(ctx, upd.ChatID, OutMessage{Text: relayFailureText(err)})
		} else {
			e.react(ctx, upd.ChatID, upd.MessageID, reactionSeen)
		}
		e.save(ctx, sess)
		return
	}

	if t, ok := node.MatchWildcard(); ok {
		e.transition(ctx, upd, sess, t)
		return
	}

	if e.graph.IsTrigger(text) {
		// A menu button from another screen, e.g. after a restart lost the
		// position: show where the user actually is.
		e.render(ctx, upd.ChatID, sess, node)
		return
	}

	e.askRelay(ctx, upd, sess, text)
}

// recoverSession rebuilds a session lost to a restart. Text matching one of the
// initial node's triggers resumes from the initial node; anything else
// resets. It returns nil when the update has been fully handled.
func (e *Engine) recoverSession(ctx context.Context, upd Update) *model.Session {
	initial := e.graph.Node(e.graph.Initial)
	if initial != nil {
		if _, ok := initial.Match(upd.Text); ok {
			logx.Ctx(ctx).Info().Int64("user_id", upd.From.ID).Msg("recovering stateless session at initial node")
			sess := e.newSession(upd.From.ID)
			sess.CurrentNode = initial.Name
			return sess
		}
	}
	e.Reset(ctx, upd)
	return nil
}

func (e *Engine) newSession(userID int64) *model.Session {
	sess := model.NewSession(userID)
	actions.SeedPrices(sess, e.graph)
	return sess
}

// Reset clears the user's session and renders the initial node.
func (e *Engine) Reset(ctx context.Context, upd Update) {
	if e.graphErr != nil {
		e.sendConfigError(ctx, upd.ChatID)
		return
	}
	if err := e.sessions.Clear(ctx, upd.From.ID); err != nil {
		logx.Ctx(ctx).Warn().Err(err).Int64("user_id", upd.From.ID).Msg("failed to clear session")
	}
	sess := e.newSession(upd.From.ID)
	node := e.graph.Node(e.graph.Initial)
	if node == nil {
		e.reportNodeResolution(ctx, upd, sess, errx.NodeResolution(e.graph.Initial))
		return
	}
	sess.CurrentNode = node.Name
	e.save(ctx, sess)
	e.render(ctx, upd.ChatID, sess, node)
}

// transition runs t's action, applies at most one level of signal chaining
// and renders the destination.
func (e *Engine) transition(ctx context.Context, upd Update, sess *model.Session, t model.Transition) {
	in := e.input(ctx, upd, sess)
	sig, err := e.actions.Execute(ctx, t.Action, in)
	if err != nil {
		e.reportActionError(ctx, upd, sess, t.Action, err)
		return
	}

	dest := t.Dest
	if name, ok := sig.Name(); ok {
		next := e.graph.Node(dest)
		if next == nil {
			e.reportNodeResolution(ctx, upd, sess, errx.NodeResolution(dest))
			return
		}
		if ct, ok := next.Match(name); ok {
			logx.Ctx(ctx).Debug().Str("signal", name).Str("from", dest).Str("to", ct.Dest).Msg("chained transition")
			// The chained action runs, but a signal it emits is ignored.
			if _, err := e.actions.Execute(ctx, ct.Action, in); err != nil {
				e.reportActionError(ctx, upd, sess, ct.Action, err)
				return
			}
			dest = ct.Dest
		} else {
			logx.Ctx(ctx).Debug().Str("signal", name).Str("node", dest).Msg("signal has no matching transition")
		}
	}

	node := e.graph.Node(dest)
	if node == nil {
		e.reportNodeResolution(ctx, upd, sess, errx.NodeResolution(dest))
		return
	}
	sess.CurrentNode = node.Name
	sess.Mode = model.ModeActive
	sess.PendingRelay = ""
	e.save(ctx, sess)
	e.render(ctx, upd.ChatID, sess, node)
}

func (e *Engine) input(ctx context.Context, upd Update, sess *model.Session) *actions.Input {
	return &actions.Input{
		Session:  sess,
		Text:     upd.Text,
		Username: upd.From.Username,
		Graph:    e.graph,
		Reply:    &replier{e: e, chatID: upd.ChatID},
	}
}

func (e *Engine) save(ctx context.Context, sess *model.Session) {
	if err := e.sessions.Set(ctx, sess); err != nil {
		logx.Ctx(ctx).Error().Err(err).Int64("user_id", sess.UserID).Msg("failed to save session")
	}
}

func (e *Engine) isAdmin(id int64) bool {
	for _, a := range e.cfg.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

// command returns the bot command in text ("/start@bot x" -> "/start").
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

type replier struct {
	e      *Engine
	chatID int64
}

func (r *replier) Reply(ctx context.Context, text string) (int, error) {
	return r.e.tr.Send(ctx, r.chatID, OutMessage{Text: text, HTML: true})
}

func (r *replier) Edit(ctx context.Context, msgID int, text string) error {
	return r.e.tr.Edit(ctx, r.chatID, msgID, text)
}

func (r *replier) Delete(ctx context.Context, msgID int) error {
	return r.e.tr.Delete(ctx, r.chatID, msgID)
}

func (r *replier) NotifyOperators(ctx context.Context, text string) {
	r.e.notifyOperators(ctx, text)
}

var _ actions.Replier = (*replier)(nil)

// isHandled reports failures an action already explained to the user.
func isHandled(err error) bool {
	return errors.Is(err, actions.ErrHandled)
}
