package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/orderapi"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/product"
	"github.com/noah-isme/toko-storefront/internal/submission"
	"github.com/noah-isme/toko-storefront/internal/wishlist"
)

// ErrNotFound indicates an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Config wires a Manager.
type Config struct {
	Catalog       *catalog.Catalog
	Rules         pricing.Rules
	Validator     *checkout.Validator
	OrderAPI      orderapi.API
	Notifiers     []events.Notifier
	RedirectDelay time.Duration
	RedirectPath  string
	IdleTTL       time.Duration
	Logger        *zerolog.Logger
	Now           func() time.Time
	NewID         func() string
	AfterFunc     submission.AfterFunc
}

// Manager owns the live sessions.
type Manager struct {
	cfg      Config
	logger   zerolog.Logger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty manager.
func NewManager(cfg Config) *Manager {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Validator == nil {
		cfg.Validator = checkout.NewValidator()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	m := &Manager{cfg: cfg, logger: zerolog.Nop(), sessions: map[string]*Session{}}
	if cfg.Logger != nil {
		m.logger = cfg.Logger.With().Str("component", "session").Logger()
	}
	return m
}

// Catalog returns the product catalog shared by all sessions.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.cfg.Catalog
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	id := m.cfg.NewID()
	logger := m.logger.With().Str("session_id", id).Logger()

	inbox := notify.NewRecorder(inboxLimit)
	notifiers := []events.Notifier{inbox}
	for _, n := range m.cfg.Notifiers {
		if n != nil {
			notifiers = append(notifiers, tagSession(id, n))
		}
	}
	bus := &events.Bus{Notifiers: notifiers}
	redirects := &RedirectRecorder{}

	s := &Session{
		ID:       id,
		Cart:     cart.NewStore(cart.Config{Rules: m.cfg.Rules, Events: bus, Logger: &logger}),
		Checkout: checkout.NewEditor(m.cfg.Validator),
		Wishlist: wishlist.New(bus, &logger),
		Submission: submission.NewController(submission.Config{
			API:           m.cfg.OrderAPI,
			Validator:     m.cfg.Validator,
			Events:        bus,
			Navigator:     redirects,
			Logger:        &logger,
			RedirectDelay: m.cfg.RedirectDelay,
			RedirectPath:  m.cfg.RedirectPath,
			AfterFunc:     m.cfg.AfterFunc,
		}),
		Redirects: redirects,
		Inbox:     inbox,
		catalog:   m.cfg.Catalog,
		events:    bus,
		logger:    logger,
		pages:     map[string]*product.Page{},
		lastSeen:  m.cfg.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	logger.Info().Msg("session_created")
	return s
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.cfg.Now())
	return s, nil
}

// Remove disposes and forgets a session.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Dispose()
		m.logger.Info().Str("session_id", id).Msg("session_removed")
	}
	return ok
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.cfg.Now().Add(-m.cfg.IdleTTL)
	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range expired {
		s.Dispose()
	}
	if len(expired) > 0 {
		m.logger.Info().Int("count", len(expired)).Msg("sessions_expired")
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close disposes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range all {
		s.Dispose()
	}
}
