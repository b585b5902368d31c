package auth

import "github.com/G-Node/formsrv/formsrv/db"

// RoleAny allows any signed in user.
const RoleAny db.Role = "*"

// LoginPath is where requests without a session are sent.
const LoginPath = "/auth/login"

// Decision is the outcome of an authorization check.  Redirect is set when
// the request is not Allowed.
type Decision struct {
	Allowed  bool
	Redirect string
}

// DashboardFor returns the home route for users with the given role.
func DashboardFor(role db.Role) string {
	if role == db.Merchant {
		return "/merchant/dashboard"
	}
	return "/client/dashboard"
}

// Authorize decides whether the signed in user (nil if there is none) may
// open a view that requires the given role.  Users without a session are
// sent to the login page and users with the wrong role to their own
// dashboard.
func Authorize(user *db.User, required db.Role) Decision {
	if user == nil {
		return Decision{Redirect: LoginPath}
	}
	if required == RoleAny || user.Role == required {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: DashboardFor(user.Role)}
}
