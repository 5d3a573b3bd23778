package handler

import (
	"errors"
	"net/http"

	"helpdesk/api/middleware"
	"helpdesk/internal/dto"
	"helpdesk/internal/entity"
	"helpdesk/internal/service"
	"helpdesk/internal/validation"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Sessions *service.SessionManager
	Validate *validation.Validator
	Cookies  middleware.SessionMiddleware
}

func NewAuthHandler(auth *service.AuthService, sessions *service.SessionManager, validate *validation.Validator, cookies middleware.SessionMiddleware) *AuthHandler {
	return &AuthHandler{
		Auth:     auth,
		Sessions: sessions,
		Validate: validate,
		Cookies:  cookies,
	}
}

func (h *AuthHandler) ShowLogin(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You are already logged in.", "/")
	}
	return c.JSON(http.StatusOK, dto.PageResponse{
		Page:    "login",
		Flashes: popFlashes(c, h.Sessions, session),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You are already logged in.", "/")
	}

	var form dto.LoginForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Please enter a valid email address.", "/login")
	}
	if message := h.Validate.Check(form); message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, "/login")
	}

	step, fresh, cookie, err := h.Auth.Login(c.Request().Context(), session, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Incorrect email or password.", "/login")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	switch step {
	case service.StepAuthenticated:
		h.Cookies.SetCookie(c, cookie, fresh.ExpiresAt)
		return flashRedirect(c, h.Sessions, fresh, entity.FlashSuccess, "Logged in successfully (2FA bypassed for testing).", "/")
	case service.StepChallenge2FA:
		return c.Redirect(http.StatusSeeOther, "/login_2fa")
	default:
		return c.Redirect(http.StatusSeeOther, "/setup_2fa")
	}
}

func (h *AuthHandler) ShowChallenge(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You are already logged in.", "/")
	}
	if session.State != entity.SessionPendingChallenge {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "No pending login found.", "/login")
	}
	return c.JSON(http.StatusOK, dto.PageResponse{
		Page:    "login_2fa",
		Flashes: popFlashes(c, h.Sessions, session),
	})
}

func (h *AuthHandler) Challenge(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You are already logged in.", "/")
	}

	var form dto.TwoFactorForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid authentication code. Please try again.", "/login_2fa")
	}

	fresh, cookie, err := h.Auth.Challenge(c.Request().Context(), session, form.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingLogin):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "No pending login found.", "/login")
		case errors.Is(err, service.ErrInvalidCode):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid authentication code. Please try again.", "/login_2fa")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "2fa challenge failed")
	}

	h.Cookies.SetCookie(c, cookie, fresh.ExpiresAt)
	return flashRedirect(c, h.Sessions, fresh, entity.FlashSuccess, "Logged in successfully.", "/")
}

func (h *AuthHandler) ShowRegister(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You have already created an account.", "/")
	}
	return c.JSON(http.StatusOK, dto.PageResponse{
		Page:    "register",
		Flashes: popFlashes(c, h.Sessions, session),
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You have already created an account.", "/")
	}

	var form dto.RegisterForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Please enter a valid email address.", "/register")
	}
	if message := h.Validate.Check(form); message != "" {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, message, "/register")
	}

	input := service.RegisterInput{
		Forename: form.Forename,
		Surname:  form.Surname,
		Email:    form.Email,
		Password: form.Password,
	}
	if err := h.Auth.Register(c.Request().Context(), session, input); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "The email you have provided is already associated with an account.", "/register")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}
	return c.Redirect(http.StatusSeeOther, "/setup_2fa")
}

func (h *AuthHandler) ShowSetup(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You have already setup 2FA.", "/")
	}

	enrollment, err := h.Auth.EnrollmentInfo(c.Request().Context(), session)
	if err != nil {
		if errors.Is(err, service.ErrNoPendingSetup) {
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "No pending 2FA setup found.", "/login")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "2fa setup failed")
	}

	return c.JSON(http.StatusOK, dto.EnrollmentResponse{
		AccountName:     enrollment.AccountName,
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
		Flashes:         popFlashes(c, h.Sessions, session),
	})
}

func (h *AuthHandler) ConfirmSetup(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	if session.Authenticated() {
		return flashRedirect(c, h.Sessions, session, entity.FlashInfo, "You have already setup 2FA.", "/")
	}

	var form dto.TwoFactorForm
	if err := c.Bind(&form); err != nil {
		return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid authentication code.", "/setup_2fa")
	}

	fresh, cookie, err := h.Auth.ConfirmEnrollment(c.Request().Context(), session, form.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingSetup):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "No pending 2FA setup found.", "/login")
		case errors.Is(err, service.ErrInvalidCode):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "Invalid authentication code.", "/setup_2fa")
		case errors.Is(err, service.ErrEmailTaken):
			return flashRedirect(c, h.Sessions, session, entity.FlashError, "The email you have provided is already associated with an account.", "/register")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "2fa setup failed")
	}

	h.Cookies.SetCookie(c, cookie, fresh.ExpiresAt)
	return flashRedirect(c, h.Sessions, fresh, entity.FlashSuccess, "2FA setup complete. You are now logged in.", "/")
}

func (h *AuthHandler) ShowLogout(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.PageResponse{
		Page:    "logout_confirm",
		Flashes: popFlashes(c, h.Sessions, session),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := sessionOrError(c)
	if err != nil {
		return err
	}
	fresh, cookie, err := h.Auth.Logout(c.Request().Context(), session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	h.Cookies.SetCookie(c, cookie, fresh.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/login")
}
