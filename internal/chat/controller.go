package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/dagchat/internal/models"
)

// User-visible notices
const (
	MsgInitFailed     = "Error initializing chat. Please try restarting the session."
	MsgSendFailed     = "Error sending message. Please try again."
	MsgUnknownError   = "Unknown error occurred"
	MsgNoModel        = "No model configured"
	MsgModelLoadError = "Error loading model info"
)

// Backend is the slice of the plugin API the controller needs. api.Client
// satisfies it.
type Backend interface {
	CreateSession(ctx context.Context) (string, error)
	ModelConfig(ctx context.Context) (*models.ModelInfo, error)
	History(ctx context.Context, sessionID string) (*models.HistoryResult, error)
	SendMessage(ctx context.Context, text, sessionID string) (*models.SendResult, error)
}

// Controller drives one chat session against a Backend and a View.
type Controller struct {
	backend  Backend
	view     View
	logger   *zap.Logger
	interval time.Duration

	mu        sync.Mutex
	sessionID string
	inFlight  bool
	lastReply string
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger for swallowed failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTypingInterval sets the typing indicator frame period
func WithTypingInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// NewController creates a controller. Call Init before Send.
func NewController(backend Backend, view View, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		view:     view,
		logger:   zap.NewNop(),
		interval: DefaultTypingInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the current session id, empty until Init succeeds.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// InFlight reports whether a send is awaiting its reply.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastReply returns the most recent assistant reply.
func (c *Controller) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply
}

// Init obtains a session id, then loads history and model info
// concurrently. On failure a system notice is shown, the session stays
// unset and nothing else is loaded.
func (c *Controller) Init(ctx context.Context) error {
	id, err := c.backend.CreateSession(ctx)
	if err != nil {
		c.logger.Error("failed to initialize chat session", zap.Error(err))
		c.system(MsgInitFailed)
		return err
	}

	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
	c.logger.Info("chat session ready", zap.String("session_id", id))

	// Both loads are best effort and never fail the group.
	var eg errgroup.Group
	eg.Go(func() error {
		c.LoadHistory(ctx)
		return nil
	})
	eg.Go(func() error {
		c.LoadModelInfo(ctx)
		return nil
	})
	return eg.Wait()
}

// LoadHistory replays the stored transcript. A non-empty history replaces
// the current transcript; an empty one leaves it alone. Failures are
// logged only.
func (c *Controller) LoadHistory(ctx context.Context) {
	sessionID := c.SessionID()
	if sessionID == "" {
		return
	}

	res, err := c.backend.History(ctx, sessionID)
	if err != nil {
		c.logger.Warn("failed to load chat history", zap.Error(err))
		return
	}
	if !res.Success {
		c.logger.Warn("chat history rejected", zap.String("error", res.Error))
		return
	}
	if len(res.History) == 0 {
		return
	}

	c.view.ClearTranscript()
	for _, msg := range res.History {
		c.view.AppendEntry(NewEntry(msg.Role, msg.Content))
		if msg.Role == models.RoleAssistant {
			c.mu.Lock()
			c.lastReply = msg.Content
			c.mu.Unlock()
		}
	}
	c.view.ScrollToBottom()
}

// LoadModelInfo updates the model badge. It never blocks sending.
func (c *Controller) LoadModelInfo(ctx context.Context) {
	if c.SessionID() == "" {
		return
	}

	info, err := c.backend.ModelConfig(ctx)
	switch {
	case err != nil:
		c.logger.Warn("failed to load model info", zap.Error(err))
		c.view.SetModelStatus(ModelStatus{Text: MsgModelLoadError, Severity: SeverityDanger})
	case info == nil:
		c.view.SetModelStatus(ModelStatus{Text: MsgNoModel, Severity: SeverityWarning})
	default:
		c.view.SetModelStatus(ModelStatus{Text: "Using: " + info.Label(), Severity: SeverityInfo})
	}
}

// Send runs one request/reply cycle and blocks until it resolves. It
// returns false without side effects when text is blank, another send is
// outstanding, or there is no session.
func (c *Controller) Send(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.mu.Lock()
	if c.inFlight || c.sessionID == "" {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	sessionID := c.sessionID
	c.mu.Unlock()

	c.view.AppendEntry(NewEntry(models.RoleUser, text))
	c.view.ScrollToBottom()
	c.view.ClearInput()

	c.view.ShowTyping()
	c.view.ScrollToBottom()
	indicator := StartIndicator(c.interval, c.view.SetTypingFrame)

	res, err := c.backend.SendMessage(ctx, text, sessionID)

	indicator.Stop()
	c.view.HideTyping()
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()

	switch {
	case err != nil || res == nil:
		c.logger.Error("failed to send message", zap.Error(err))
		c.system(MsgSendFailed)
	case !res.Success:
		reason := res.Error
		if reason == "" {
			reason = MsgUnknownError
		}
		c.logger.Warn("message rejected", zap.String("error", res.Error))
		c.system("Error: " + reason)
	default:
		c.mu.Lock()
		c.lastReply = res.Response
		if res.SessionID != "" && res.SessionID != c.sessionID {
			c.logger.Info("chat session rotated", zap.String("session_id", res.SessionID))
			c.sessionID = res.SessionID
		}
		c.mu.Unlock()
		c.view.AppendEntry(NewEntry(models.RoleAssistant, res.Response))
		c.view.ScrollToBottom()
	}
	return true
}

func (c *Controller) system(text string) {
	c.view.AppendEntry(NewEntry(models.RoleSystem, text))
	c.view.ScrollToBottom()
}
