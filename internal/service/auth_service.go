package service

import (
	"context"

	"helpdesk/internal/entity"
	"helpdesk/internal/repository"
	"helpdesk/internal/utils"

	"github.com/sirupsen/logrus"
)

// dummyPasswordHash is compared when the email does not match any account so
// a failed login takes the same time either way.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// LoginStep tells the handler where to send the browser after a successful
// credential check.
type LoginStep int

const (
	StepAuthenticated LoginStep = iota
	StepSetup2FA
	StepChallenge2FA
)

type AuthConfig struct {
	// Disable2FA skips enrollment and challenge entirely. Meant for test
	// and staging environments only.
	Disable2FA bool
}

// Enrollment is what the 2FA setup page needs to render: the shared secret
// and the otpauth:// URI an authenticator app can scan.
type Enrollment struct {
	AccountName     string
	Secret          string
	ProvisioningURI string
}

type RegisterInput struct {
	Forename string
	Surname  string
	Email    string
	Password string
}

// AuthService drives the login/registration state machine:
//
//	anonymous -> credentials checked -> pending enrollment | pending challenge -> authenticated
//
// Transient state between steps lives on the session row, never in process
// memory. A registration draft only becomes a user row once its enrollment
// code has been verified.
type AuthService struct {
	users    repository.UserRepository
	sessions *SessionManager
	hasher   PasswordHasher
	totp     TOTPProvider
	config   AuthConfig
	log      *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionManager,
	hasher PasswordHasher,
	totp TOTPProvider,
	config AuthConfig,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		totp:     totp,
		config:   config,
		log:      log,
	}
}

// Login checks credentials and advances the session to the next step. The
// same ErrInvalidCredentials comes back whether the email or the password
// was wrong. When 2FA is bypassed by configuration, the returned session is
// the fresh authenticated one and the cookie value must be re-set.
func (s *AuthService) Login(ctx context.Context, session *entity.Session, email, password string) (LoginStep, *entity.Session, string, error) {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return 0, nil, "", err
	}
	if user == nil {
		_ = s.hasher.Verify(dummyPasswordHash, password)
		s.logEvent(logrus.Fields{"email": utils.NormalizeEmail(email)}, "login failed")
		return 0, nil, "", ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logEvent(logrus.Fields{"user_id": user.ID}, "login failed")
		return 0, nil, "", ErrInvalidCredentials
	}

	if s.config.Disable2FA {
		fresh, cookie, err := s.sessions.Regenerate(ctx, session, entity.SessionAuthenticated, &user.ID)
		if err != nil {
			return 0, nil, "", err
		}
		s.logEvent(logrus.Fields{"user_id": user.ID, "bypass_2fa": true}, "login succeeded")
		return StepAuthenticated, fresh, cookie, nil
	}

	session.PendingUserID = &user.ID
	session.Draft = nil
	if user.TwoFactorEnabled {
		session.State = entity.SessionPendingChallenge
	} else {
		session.State = entity.SessionPendingEnrollment
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return 0, nil, "", err
	}
	if user.TwoFactorEnabled {
		return StepChallenge2FA, session, "", nil
	}
	return StepSetup2FA, session, "", nil
}

// Register validates uniqueness, stashes the draft on the session, and moves
// it to pending enrollment. No user row exists until enrollment completes.
func (s *AuthService) Register(ctx context.Context, session *entity.Session, input RegisterInput) error {
	email := utils.NormalizeEmail(input.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}
	draft := &entity.RegistrationDraft{
		Forename:     input.Forename,
		Surname:      input.Surname,
		Email:        email,
		PasswordHash: hash,
	}
	session.State = entity.SessionPendingEnrollment
	session.PendingUserID = nil
	if err := s.sessions.SetDraft(ctx, session, draft); err != nil {
		return err
	}
	return nil
}

// EnrollmentInfo provisions (or re-reads) the shared secret for the pending
// enrollment and derives the otpauth:// URI. For an existing user the secret
// is persisted immediately; for a registration draft it stays on the session
// until the code is confirmed.
func (s *AuthService) EnrollmentInfo(ctx context.Context, session *entity.Session) (*Enrollment, error) {
	if session.State != entity.SessionPendingEnrollment {
		return nil, ErrNoPendingSetup
	}

	if session.PendingUserID != nil {
		user, err := s.users.FindByID(ctx, *session.PendingUserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrNoPendingSetup
		}
		if user.TOTPSecret == nil {
			secret, err := s.totp.GenerateSecret(user.Email)
			if err != nil {
				return nil, err
			}
			user.TOTPSecret = &secret
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
		return s.enrollment(user.Email, *user.TOTPSecret)
	}

	draft := s.sessions.Draft(session)
	if draft == nil {
		return nil, ErrNoPendingSetup
	}
	if draft.TOTPSecret == "" {
		secret, err := s.totp.GenerateSecret(draft.Email)
		if err != nil {
			return nil, err
		}
		draft.TOTPSecret = secret
		if err := s.sessions.SetDraft(ctx, session, draft); err != nil {
			return nil, err
		}
	}
	return s.enrollment(draft.Email, draft.TOTPSecret)
}

func (s *AuthService) enrollment(accountName, secret string) (*Enrollment, error) {
	uri, err := s.totp.ProvisioningURI(accountName, secret)
	if err != nil {
		return nil, err
	}
	return &Enrollment{
		AccountName:     accountName,
		Secret:          secret,
		ProvisioningURI: uri,
	}, nil
}

// ConfirmEnrollment verifies the submitted code. For an existing user it
// flips TwoFactorEnabled; for a registration draft it materializes the user
// row now. Either way the session becomes authenticated.
func (s *AuthService) ConfirmEnrollment(ctx context.Context, session *entity.Session, code string) (*entity.Session, string, error) {
	if session.State != entity.SessionPendingEnrollment {
		return nil, "", ErrNoPendingSetup
	}

	if session.PendingUserID != nil {
		user, err := s.users.FindByID(ctx, *session.PendingUserID)
		if err != nil {
			return nil, "", err
		}
		if user == nil || user.TOTPSecret == nil {
			return nil, "", ErrNoPendingSetup
		}
		if !s.totp.ValidateCode(*user.TOTPSecret, code) {
			s.logEvent(logrus.Fields{"user_id": user.ID}, "2fa enrollment code rejected")
			return nil, "", ErrInvalidCode
		}
		user.TwoFactorEnabled = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, "", err
		}
		return s.authenticate(ctx, session, user.ID)
	}

	draft := s.sessions.Draft(session)
	if draft == nil || draft.TOTPSecret == "" {
		return nil, "", ErrNoPendingSetup
	}
	if !s.totp.ValidateCode(draft.TOTPSecret, code) {
		s.logEvent(logrus.Fields{"email": draft.Email}, "2fa enrollment code rejected")
		return nil, "", ErrInvalidCode
	}

	secret := draft.TOTPSecret
	user := &entity.User{
		Forename:         draft.Forename,
		Surname:          draft.Surname,
		Email:            draft.Email,
		PasswordHash:     draft.PasswordHash,
		Role:             entity.RoleStandard,
		TOTPSecret:       &secret,
		TwoFactorEnabled: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A duplicate registration finishing first surfaces here as a
		// unique-constraint violation.
		return nil, "", ErrEmailTaken
	}
	return s.authenticate(ctx, session, user.ID)
}

// Challenge verifies a login code against the user's persisted secret.
func (s *AuthService) Challenge(ctx context.Context, session *entity.Session, code string) (*entity.Session, string, error) {
	if session.State != entity.SessionPendingChallenge || session.PendingUserID == nil {
		return nil, "", ErrNoPendingLogin
	}
	user, err := s.users.FindByID(ctx, *session.PendingUserID)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.TOTPSecret == nil {
		return nil, "", ErrNoPendingLogin
	}
	if !s.totp.ValidateCode(*user.TOTPSecret, code) {
		s.logEvent(logrus.Fields{"user_id": user.ID}, "2fa challenge code rejected")
		return nil, "", ErrInvalidCode
	}
	return s.authenticate(ctx, session, user.ID)
}

// Logout drops all authenticated and pending state. Idempotent: logging out
// an anonymous session just hands back a fresh anonymous one.
func (s *AuthService) Logout(ctx context.Context, session *entity.Session) (*entity.Session, string, error) {
	if session.UserID != nil {
		s.logEvent(logrus.Fields{"user_id": *session.UserID}, "logged out")
	}
	return s.sessions.Regenerate(ctx, session, entity.SessionAnonymous, nil)
}

// CurrentUser resolves the actor for an authenticated session.
func (s *AuthService) CurrentUser(ctx context.Context, session *entity.Session) (*entity.User, error) {
	if !session.Authenticated() {
		return nil, nil
	}
	return s.users.FindByID(ctx, *session.UserID)
}

func (s *AuthService) authenticate(ctx context.Context, session *entity.Session, userID uint) (*entity.Session, string, error) {
	fresh, cookie, err := s.sessions.Regenerate(ctx, session, entity.SessionAuthenticated, &userID)
	if err != nil {
		return nil, "", err
	}
	s.logEvent(logrus.Fields{"user_id": userID}, "login succeeded")
	return fresh, cookie, nil
}

func (s *AuthService) logEvent(fields logrus.Fields, message string) {
	if s.log == nil {
		return
	}
	s.log.WithFields(fields).Info(message)
}
