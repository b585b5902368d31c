// Common routes and pages
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

// msgGeneric is shown when a store operation fails.
const msgGeneric = "Something went wrong. Please try again."

// authedHandler is a handler that requires a signed in user.
type authedHandler func(w http.ResponseWriter, r *http.Request, user *db.User)

// reqRoleHandler acts as middleware to check that the user is signed in and
// has the required role.  Requests that are not authorized are redirected
// to the target decided by auth.Authorize.
func (srv *Service) reqRoleHandler(role db.Role, handler authedHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		user := srv.currentUser(r)
		if d := auth.Authorize(user, role); !d.Allowed {
			http.Redirect(w, r, d.Redirect, http.StatusFound)
			return
		}
		handler(w, r, user)
	}
}

// currentUser returns the user of the request's session, or nil if there is
// no valid session.
func (srv *Service) currentUser(r *http.Request) *db.User {
	cookie, err := r.Cookie(srv.Config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	ctx := r.Context()
	sess, err := srv.db.GetSession(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			srv.log.Error("Failed to load session", zap.Error(err))
		}
		return nil
	}
	if sess.Expired(time.Now()) {
		if err := srv.db.DeleteSession(ctx, sess.ID); err != nil {
			srv.log.Error("Failed to delete expired session", zap.Error(err))
		}
		return nil
	}
	user, err := srv.db.GetUser(ctx, sess.UserID)
	if err != nil {
		srv.log.Error("Failed to load session user", zap.String("session", sess.ID), zap.Error(err))
		return nil
	}
	return user
}

// sessionInfo is what the layout shows for a signed in user.
type sessionInfo struct {
	Name      string
	Dashboard string
}

// pageData returns the data map for a page with the layout's values set.
func pageData(user *db.User, title string) map[string]interface{} {
	data := make(map[string]interface{})
	data["title"] = title
	if user != nil {
		name := user.FullName
		if name == "" {
			name = user.Email
		}
		data["session"] = sessionInfo{Name: name, Dashboard: auth.DashboardFor(user.Role)}
	}
	return data
}

// render writes a page and falls back to the error page if rendering fails.
func (srv *Service) render(w http.ResponseWriter, status int, content string, data map[string]interface{}) {
	if err := srv.web.Render(w, status, content, data); err != nil {
		srv.log.Error("Failed to render page", zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Failed to render page")
	}
}

// setupWebRoutes sets up all routes of the service.
func (srv *Service) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)

	router.HandleFunc("/", srv.renderHome).Methods("GET")

	router.HandleFunc("/auth/login", srv.renderLoginPage).Methods("GET")
	router.HandleFunc("/auth/login", srv.userLoginPost).Methods("POST")
	router.HandleFunc("/auth/signup", srv.renderSignUpPage).Methods("GET")
	router.HandleFunc("/auth/signup", srv.userSignUpPost).Methods("POST")
	router.HandleFunc("/auth/check-email", srv.renderCheckEmail).Methods("GET")
	router.HandleFunc("/auth/confirm", srv.confirmEmail).Methods("GET")
	router.HandleFunc("/auth/logout", srv.userLogout).Methods("POST")

	router.HandleFunc("/merchant/dashboard", srv.reqRoleHandler(db.Merchant, srv.merchantDashboard)).Methods("GET")
	router.HandleFunc("/merchant/forms/new", srv.reqRoleHandler(db.Merchant, srv.newFormPage)).Methods("GET")
	router.HandleFunc("/merchant/forms/new", srv.reqRoleHandler(db.Merchant, srv.newFormPost)).Methods("POST")
	router.HandleFunc("/merchant/forms/{id}/edit", srv.reqRoleHandler(db.Merchant, srv.editFormPage)).Methods("GET")
	router.HandleFunc("/merchant/forms/{id}/edit", srv.reqRoleHandler(db.Merchant, srv.editFormPost)).Methods("POST")
	router.HandleFunc("/merchant/forms/{id}/publish", srv.reqRoleHandler(db.Merchant, srv.togglePublished)).Methods("POST")
	router.HandleFunc("/merchant/forms/{id}/delete", srv.reqRoleHandler(db.Merchant, srv.deleteForm)).Methods("POST")
	router.HandleFunc("/merchant/forms/{id}/submissions", srv.reqRoleHandler(db.Merchant, srv.renderSubmissions)).Methods("GET")
	router.HandleFunc("/merchant/forms/{id}/submissions.csv", srv.reqRoleHandler(db.Merchant, srv.exportSubmissions)).Methods("GET")

	router.HandleFunc("/client/dashboard", srv.reqRoleHandler(db.Client, srv.clientDashboard)).Methods("GET")

	router.HandleFunc("/submit/{id}", srv.renderSubmitPage).Methods("GET")
	router.HandleFunc("/submit/{id}", srv.submitPost).Methods("POST")

	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir(srv.Config.Assets))))
}

func (srv *Service) renderHome(w http.ResponseWriter, r *http.Request) {
	srv.render(w, http.StatusOK, templates.Home, pageData(srv.currentUser(r), ""))
}
