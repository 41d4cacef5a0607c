package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/recipebox-back/internal/service"
)

type (
	SignupReq struct {
		Username string `json:"username" validate:"required,max=150"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	SignupResp struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	SignupConfirmationReq struct {
		Token string `json:"token" validate:"required,max=256"`
	}

	LoginReq struct {
		Username   string `json:"username" validate:"required,max=150"`
		Password   string `json:"password" validate:"required"`
		RememberMe bool   `json:"remember_me"`
	}

	AccountDestroyReq struct {
		Password string `json:"password" validate:"required"`
	}
)

func (s *HTTPServer) Signup(c echo.Context) error {
	req := SignupReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	user, err := s.svc.Signup(req.Username, req.Email, req.Password)
	if err != nil {
		return s.respondErr(c, err)
	}

	return c.JSON(http.StatusCreated, DataMessageResp{
		Data: SignupResp{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Message: "You were signed up successfully.",
	})
}

func (s *HTTPServer) SignupConfirmation(c echo.Context) error {
	req := SignupConfirmationReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.ConfirmSignup(req.Token); err != nil {
		return s.respondErr(c, err)
	}

	return c.JSON(http.StatusOK, MessageResp{
		Message: "Your signup was successfully confirmed.",
	})
}

// CSRFToken exists for the cookie-based client's boot sequence; session
// auth here is token-cookie based so there is nothing to hand out.
func (s *HTTPServer) CSRFToken(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	s.logger.Infow("attempting login", "username", req.Username)

	user, err := s.svc.Login(req.Username, req.Password)
	if err != nil {
		if err == service.ErrLoginUserNotFound || err == service.ErrLoginPasswordDoesNotMatch {
			s.logger.Warnw("login failed authentication check", "username", req.Username)
			return c.JSON(http.StatusUnprocessableEntity, ErrorResp{
				Message: "We couldn't authenticate you. Your username or password might be wrong, or there might be an issue with your account.",
			})
		}
		return s.respondErr(c, err)
	}

	s.logger.Infow("login succeeded", "username", req.Username)

	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    user.SessionToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if req.RememberMe {
		cookie.MaxAge = rememberMeMaxAge
	}
	c.SetCookie(cookie)

	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	if err := s.svc.Logout(user); err != nil {
		return s.respondErr(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) AccountDestroy(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return s.respondErr(c, err)
	}

	req := AccountDestroyReq{}
	if err := BindAndValidate(c, &req); err != nil {
		s.logger.Warnw("account deletion failed with invalid request data", "user_id", user.ID)
		return s.respondErr(c, err)
	}

	if err := s.svc.AccountDestroy(user, req.Password); err != nil {
		return s.respondErr(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.NoContent(http.StatusNoContent)
}
