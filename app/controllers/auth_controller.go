package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/bind"
	"github.com/shashiranjanraj/thali/pkg/session"
)

const (
	msgEmailTaken   = "Email already registered."
	msgRegistered   = "Registration successful! Please login."
	msgInvalidLogin = "Invalid email or password."
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type AuthController struct {
	pages    *Pages
	accounts *services.AuthService
	identity *services.IdentityService
}

func NewAuthController(pages *Pages, accounts *services.AuthService, identity *services.IdentityService) *AuthController {
	return &AuthController{pages: pages, accounts: accounts, identity: identity}
}

func (c *AuthController) ShowRegister(w http.ResponseWriter, r *http.Request) {
	c.pages.Render(w, r, http.StatusOK, "register.html", "Register", services.Registration{})
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.Registration
	if err := bind.Form(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err := c.accounts.Register(r.Context(), in)
	var verr *services.ValidationError
	switch {
	case err == nil:
		session.FromCtx(r).Flash("success", msgRegistered)
		redirect(w, r, "/login")
	case errors.Is(err, services.ErrDuplicateEmail):
		session.FromCtx(r).Flash("danger", msgEmailTaken)
		redirect(w, r, "/register")
	case errors.As(err, &verr):
		session.FromCtx(r).Flash("danger", verr.Message)
		in.Password = ""
		c.pages.Render(w, r, http.StatusUnprocessableEntity, "register.html", "Register", in)
	default:
		c.pages.ServerError(w, r, err)
	}
}

func (c *AuthController) ShowLogin(w http.ResponseWriter, r *http.Request) {
	c.pages.Render(w, r, http.StatusOK, "login.html", "Login", loginForm{})
}

// Login starts a session for valid credentials. A failed attempt re-renders
// the form with the same message for unknown emails and wrong passwords.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginForm
	if err := bind.Form(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := c.accounts.Verify(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		session.FromCtx(r).Flash("danger", msgInvalidLogin)
		c.pages.Render(w, r, http.StatusOK, "login.html", "Login", loginForm{Email: in.Email})
		return
	}
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}

	c.identity.Establish(session.FromCtx(r), u)
	redirect(w, r, "/")
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.identity.Terminate(session.FromCtx(r))
	redirect(w, r, "/")
}
