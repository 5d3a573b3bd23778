package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"helpdesk/api/handler"
	"helpdesk/api/middleware"
	"helpdesk/config"
	"helpdesk/internal/entity"
	"helpdesk/internal/repository"
	"helpdesk/internal/service"
	"helpdesk/internal/utils"
	"helpdesk/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	e      *echo.Echo
	db     *gorm.DB
	hasher service.BcryptPasswordHasher
}

func newTestApp(t *testing.T, authConfig service.AuthConfig) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	hasher := service.BcryptPasswordHasher{Cost: bcrypt.MinCost}
	tokens := utils.SessionTokenManager{Secret: []byte("test-secret"), Issuer: "helpdesk"}
	sessions := service.NewSessionManager(sessionRepo, tokens, time.Hour, nil)
	auth := service.NewAuthService(userRepo, sessions, hasher, service.NewTOTP(""), authConfig, log)
	tickets := service.NewTicketService(ticketRepo, commentRepo, userRepo, nil)
	users := service.NewUserService(userRepo, ticketRepo)
	validate := validation.New()

	sessionMW := middleware.SessionMiddleware{Sessions: sessions}
	authMW := middleware.AuthMiddleware{Auth: auth, Sessions: sessions}

	e := echo.New()
	router := NewRouter(
		e,
		handler.NewAuthHandler(auth, sessions, validate, sessionMW),
		handler.NewTicketHandler(tickets, sessions, validate),
		handler.NewUserHandler(users, sessions),
		sessionMW,
		authMW,
	)
	router.RegisterRoutes()

	return &testApp{e: e, db: db, hasher: hasher}
}

func (a *testApp) createAccount(t *testing.T, email string, role entity.Role) *entity.User {
	t.Helper()

	hash, err := a.hasher.Hash("Password1!")
	require.NoError(t, err)
	user := &entity.User{
		Forename:     "Alice",
		Surname:      "Tester",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, a.db.Create(user).Error)
	return user
}

// browser carries the session cookie between requests like a real client.
type browser struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func newBrowser(app *testApp) *browser {
	return &browser{app: app, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, cookie := range b.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		b.cookies[cookie.Name] = cookie
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil)
}

func flashMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()

	var page struct {
		Flashes []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"flashes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	messages := make([]string, 0, len(page.Flashes))
	for _, flash := range page.Flashes {
		messages = append(messages, flash.Message)
	}
	return messages
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{})
	b := newBrowser(app)

	rec := b.get("/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	// The denial leaves a flash for the login page.
	rec = b.get("/login")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, flashMessages(t, rec), "Please log in to access this page.")
}

func TestLoginLogoutWithBypass(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{Disable2FA: true})
	app.createAccount(t, "alice@example.com", entity.RoleStandard)
	b := newBrowser(app)

	rec := b.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	rec = b.get("/login")
	assert.Contains(t, flashMessages(t, rec), "Incorrect email or password.")

	rec = b.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"Password1!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, flashMessages(t, rec), "Logged in successfully (2FA bypassed for testing).")

	rec = b.do(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	// The old cookie no longer grants access.
	rec = b.get("/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRegistrationWithEnrollment(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{})
	b := newBrowser(app)

	rec := b.do(http.MethodPost, "/register", url.Values{
		"forename":         {"Alice"},
		"surname":          {"Smith"},
		"email":            {"alice@example.com"},
		"password":         {"Password1!"},
		"password_confirm": {"Password1!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/setup_2fa", rec.Header().Get(echo.HeaderLocation))

	// No user row yet.
	var total int64
	require.NoError(t, app.db.Model(&entity.User{}).Count(&total).Error)
	require.EqualValues(t, 0, total)

	rec = b.get("/setup_2fa")
	require.Equal(t, http.StatusOK, rec.Code)
	var enrollment struct {
		Secret          string `json:"secret"`
		ProvisioningURI string `json:"provisioning_uri"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enrollment))
	require.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.ProvisioningURI, "otpauth://totp/")

	rec = b.do(http.MethodPost, "/setup_2fa", url.Values{"token": {"000000"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/setup_2fa", rec.Header().Get(echo.HeaderLocation))

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	rec = b.do(http.MethodPost, "/setup_2fa", url.Values{"token": {code}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, flashMessages(t, rec), "2FA setup complete. You are now logged in.")

	require.NoError(t, app.db.Model(&entity.User{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestTicketCreationFlow(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{Disable2FA: true})
	app.createAccount(t, "alice@example.com", entity.RoleStandard)
	b := newBrowser(app)

	rec := b.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"Password1!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	b.get("/") // drain the login flash

	rec = b.do(http.MethodPost, "/create_ticket", url.Values{
		"ticket_type":    {"Bug Report"},
		"subject":        {"Login page broken"},
		"description":    {"Cannot log in after the latest update."},
		"status":         {"Open"},
		"priority":       {"High"},
		"estimated_time": {"0.5"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/create_ticket", rec.Header().Get(echo.HeaderLocation))
	rec = b.get("/create_ticket")
	assert.Contains(t, flashMessages(t, rec), "Estimated time cannot be less than 1 hour.")

	rec = b.do(http.MethodPost, "/create_ticket", url.Values{
		"ticket_type":    {"Bug Report"},
		"subject":        {"Login page broken"},
		"description":    {"Cannot log in after the latest update."},
		"status":         {"Open"},
		"priority":       {"High"},
		"estimated_time": {"2.5"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = b.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, flashMessages(t, rec), "Ticket created successfully!")

	var page struct {
		Tickets []struct {
			Subject string `json:"subject"`
		} `json:"tickets"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "Login page broken", page.Tickets[0].Subject)
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{})
	b := newBrowser(app)

	form := url.Values{
		"email":    {"nobody@example.com"},
		"password": {"wrong"},
	}

	limited := false
	for i := 0; i < 10; i++ {
		rec := b.do(http.MethodPost, "/login", form)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}
	assert.True(t, limited, "burst of login attempts was never throttled")
}

func TestUsersPageIsAdminOnly(t *testing.T) {
	app := newTestApp(t, service.AuthConfig{Disable2FA: true})
	app.createAccount(t, "alice@example.com", entity.RoleStandard)
	app.createAccount(t, "ada@example.com", entity.RoleAdmin)

	b := newBrowser(app)
	rec := b.do(http.MethodPost, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"Password1!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	b.get("/")

	rec = b.get("/users")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	rec = b.get("/")
	assert.Contains(t, flashMessages(t, rec), "You do not have permission to view this page.")

	admin := newBrowser(app)
	rec = admin.do(http.MethodPost, "/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Password1!"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = admin.get("/users")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		StandardUsers  []service.UserSummary `json:"standard_users"`
		Administrators []service.UserSummary `json:"administrators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.StandardUsers, 1)
	assert.Len(t, page.Administrators, 1)
}
