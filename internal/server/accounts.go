package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nashtech/odmat/internal/auth"
)

type accounts struct {
	svc *auth.Service
}

type messageResponse struct {
	Message string `json:"message"`
	Code    string `json:"verificationCode,omitempty"`
}

// signup returns the verification code in the response body since codes
// are not mailed out.
func (h accounts) signup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	code, err := h.svc.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "User registered successfully. Verify the account with the code.",
		Code:    code,
	})
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h accounts) signin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	tok, err := h.svc.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

func (h accounts) verify(c echo.Context) error {
	email, code := c.QueryParam("email"), c.QueryParam("code")
	if email == "" || code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and code are required")
	}
	if err := h.svc.Verify(c.Request().Context(), email, code); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User verified successfully!"})
}
