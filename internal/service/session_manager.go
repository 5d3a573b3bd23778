package service

import (
	"context"
	"encoding/json"
	"time"

	"helpdesk/internal/entity"
	"helpdesk/internal/repository"
	"helpdesk/internal/utils"

	"github.com/google/uuid"
)

// SessionManager owns the browser-session lifecycle: the signed cookie names
// a session row, and the row carries auth state, pending 2FA state, the
// registration draft, and the flash queue.
type SessionManager struct {
	sessions repository.SessionRepository
	tokens   utils.SessionTokenManager
	ttl      time.Duration
	clock    Clock
}

func NewSessionManager(sessions repository.SessionRepository, tokens utils.SessionTokenManager, ttl time.Duration, clock Clock) *SessionManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &SessionManager{
		sessions: sessions,
		tokens:   tokens,
		ttl:      ttl,
		clock:    clock,
	}
}

// Resolve returns the live session for a cookie value, or nil when the
// cookie is absent, unparseable, revoked, or expired.
func (m *SessionManager) Resolve(ctx context.Context, cookie string) (*entity.Session, error) {
	if cookie == "" {
		return nil, nil
	}
	id, err := m.tokens.Parse(cookie)
	if err != nil {
		return nil, nil
	}
	session, err := m.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(m.clock.Now()) {
		return nil, nil
	}
	return session, nil
}

// Start creates a fresh anonymous session and returns it with its signed
// cookie value.
func (m *SessionManager) Start(ctx context.Context, ip, userAgent *string) (*entity.Session, string, error) {
	session := &entity.Session{
		ID:        uuid.New(),
		State:     entity.SessionAnonymous,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: m.clock.Now().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}
	token, err := m.tokens.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (m *SessionManager) Save(ctx context.Context, session *entity.Session) error {
	return m.sessions.Update(ctx, session)
}

// Regenerate replaces the session row with a fresh id on privilege changes
// (login, logout) so an old cookie never outlives a state transition. The
// flash queue carries over; pending state and drafts do not.
func (m *SessionManager) Regenerate(ctx context.Context, old *entity.Session, state entity.SessionState, userID *uint) (*entity.Session, string, error) {
	session := &entity.Session{
		ID:        uuid.New(),
		State:     state,
		UserID:    userID,
		Flashes:   old.Flashes,
		IPAddress: old.IPAddress,
		UserAgent: old.UserAgent,
		ExpiresAt: m.clock.Now().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}
	if err := m.sessions.Revoke(ctx, old.ID); err != nil {
		return nil, "", err
	}
	token, err := m.tokens.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (m *SessionManager) AddFlash(ctx context.Context, session *entity.Session, level, message string) error {
	var flashes []entity.Flash
	if len(session.Flashes) > 0 {
		if err := json.Unmarshal(session.Flashes, &flashes); err != nil {
			flashes = nil
		}
	}
	flashes = append(flashes, entity.Flash{Level: level, Message: message})
	raw, err := json.Marshal(flashes)
	if err != nil {
		return err
	}
	session.Flashes = raw
	return m.sessions.Update(ctx, session)
}

// PopFlashes drains and returns the pending flash messages.
func (m *SessionManager) PopFlashes(ctx context.Context, session *entity.Session) ([]entity.Flash, error) {
	if len(session.Flashes) == 0 {
		return nil, nil
	}
	var flashes []entity.Flash
	if err := json.Unmarshal(session.Flashes, &flashes); err != nil {
		flashes = nil
	}
	session.Flashes = nil
	if err := m.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return flashes, nil
}

// SetDraft stores the registration draft on the session row.
func (m *SessionManager) SetDraft(ctx context.Context, session *entity.Session, draft *entity.RegistrationDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	session.Draft = raw
	return m.sessions.Update(ctx, session)
}

// Draft decodes the registration draft, or returns nil when none is stored.
func (m *SessionManager) Draft(session *entity.Session) *entity.RegistrationDraft {
	if len(session.Draft) == 0 {
		return nil
	}
	var draft entity.RegistrationDraft
	if err := json.Unmarshal(session.Draft, &draft); err != nil {
		return nil
	}
	return &draft
}
