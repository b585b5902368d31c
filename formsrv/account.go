package formsrv

import (
	"errors"
	"net/http"
	"time"

	"github.com/G-Node/formsrv/formsrv/auth"
	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/G-Node/formsrv/templates"
	"go.uber.org/zap"
)

func (srv *Service) renderLoginPage(w http.ResponseWriter, r *http.Request) {
	if user := srv.currentUser(r); user != nil {
		http.Redirect(w, r, auth.DashboardFor(user.Role), http.StatusFound)
		return
	}
	data := pageData(nil, "Sign In")
	if r.URL.Query().Get("confirmed") != "" {
		data["notice"] = "Your email address is confirmed. You can sign in now."
	}
	srv.render(w, http.StatusOK, templates.Login, data)
}

func (srv *Service) userLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "invalid form data")
		return
	}
	login := r.PostForm.Get("login")
	password := r.PostForm.Get("password")

	fail := func(status int, message string) {
		data := pageData(nil, "Sign In")
		data["error"] = message
		data["login"] = login
		srv.render(w, status, templates.Login, data)
	}

	user, err := srv.auth.SignIn(r.Context(), login, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail(http.StatusUnauthorized, "Invalid email or password")
		return
	case errors.Is(err, auth.ErrNotConfirmed):
		fail(http.StatusForbidden, "Please confirm your email address before signing in")
		return
	case err != nil:
		srv.log.Error("Sign in failed", zap.String("login", login), zap.Error(err))
		fail(http.StatusInternalServerError, msgGeneric)
		return
	}

	sess := db.NewSession(user.ID, srv.Config.SessionTTL)
	if err := srv.db.InsertSession(r.Context(), sess); err != nil {
		srv.log.Error("Failed to store session", zap.Error(err))
		fail(http.StatusInternalServerError, msgGeneric)
		return
	}
	cookie := http.Cookie{
		Name:     srv.Config.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.Expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
	srv.log.Info("User signed in", zap.String("user", user.ID), zap.String("role", string(user.Role)))
	http.Redirect(w, r, auth.DashboardFor(user.Role), http.StatusFound)
}

func (srv *Service) renderSignUpPage(w http.ResponseWriter, r *http.Request) {
	data := pageData(srv.currentUser(r), "Sign Up")
	data["role"] = string(db.Client)
	srv.render(w, http.StatusOK, templates.SignUp, data)
}

// signUpMessages maps sign up errors to the message shown to the user.
var signUpMessages = map[error]string{
	auth.ErrInvalidEmail:      "Please enter a valid email address",
	auth.ErrWeakPassword:      "Password must be at least 8 characters",
	auth.ErrInvalidRole:       "Please choose an account type",
	auth.ErrEmailTaken:        "An account with this email address already exists",
	auth.ErrSignUpUnsupported: "Sign up is not available. Please sign in with your existing account.",
}

func (srv *Service) userSignUpPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "invalid form data")
		return
	}
	req := auth.SignUpRequest{
		FullName: r.PostForm.Get("full_name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     db.Role(r.PostForm.Get("role")),
	}
	_, err := srv.auth.SignUp(r.Context(), req)
	if err == nil {
		http.Redirect(w, r, "/auth/check-email", http.StatusFound)
		return
	}

	data := pageData(nil, "Sign Up")
	data["full_name"] = req.FullName
	data["email"] = req.Email
	data["role"] = string(req.Role)
	status := http.StatusBadRequest
	for target, msg := range signUpMessages {
		if errors.Is(err, target) {
			data["error"] = msg
			break
		}
	}
	if data["error"] == nil {
		srv.log.Error("Sign up failed", zap.Error(err))
		data["error"] = msgGeneric
		status = http.StatusInternalServerError
	}
	srv.render(w, status, templates.SignUp, data)
}

func (srv *Service) renderCheckEmail(w http.ResponseWriter, r *http.Request) {
	srv.render(w, http.StatusOK, templates.CheckEmail, pageData(nil, "Check your email"))
}

func (srv *Service) confirmEmail(w http.ResponseWriter, r *http.Request) {
	user, err := srv.auth.Confirm(r.Context(), r.URL.Query().Get("token"))
	if errors.Is(err, auth.ErrInvalidToken) {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid or expired confirmation link")
		return
	} else if err != nil {
		srv.log.Error("Confirmation failed", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	srv.log.Info("Email address confirmed", zap.String("user", user.ID))
	http.Redirect(w, r, "/auth/login?confirmed=1", http.StatusFound)
}

func (srv *Service) userLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(srv.Config.CookieName); err == nil && cookie.Value != "" {
		if err := srv.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			srv.log.Error("Failed to delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:    srv.Config.CookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
