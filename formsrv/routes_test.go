package formsrv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/G-Node/formsrv/formsrv/auth"
	"golang.org/x/net/html"
)

const testPassword = "correct horse"

func newTestService(t *testing.T) *Service {
	srv, err := NewService(testConfig(t, 4260), nil)
	if err != nil {
		t.Fatalf("Failed to initialise service: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

// request serves a single request on the service's handler.  Form values are
// posted url-encoded; cookie may be nil.
func request(srv *Service, method, route string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if values != nil {
		req = httptest.NewRequest(method, route, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, route, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func checkRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("Expected redirect to %s, got status %d: %s", location, rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != location {
		t.Fatalf("Expected redirect to %s, got %s", location, loc)
	}
}

// checkPage fails the test if the response does not have the given status,
// is not valid HTML, or does not contain text.
func checkPage(t *testing.T, rr *httptest.ResponseRecorder, status int, text string) *html.Node {
	t.Helper()
	body := rr.Body.String()
	if rr.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, rr.Code, body)
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Invalid HTML: %v", err)
	}
	if !strings.Contains(body, text) {
		t.Fatalf("Page does not contain %q: %s", text, body)
	}
	return doc
}

func findID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// signUp creates a confirmed account and returns a session cookie for it.
func signUp(t *testing.T, srv *Service, name, email, role string) *http.Cookie {
	t.Helper()
	rr := request(srv, "POST", "/auth/signup", url.Values{
		"full_name": {name},
		"email":     {email},
		"password":  {testPassword},
		"role":      {role},
	}, nil)
	checkRedirect(t, rr, "/auth/check-email")

	user, err := srv.db.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("Signed up user not stored: %v", err)
	}
	token, err := auth.NewTokens(srv.Config.Auth.Secret, auth.ConfirmTTL).Issue(user.ID, auth.PurposeConfirm)
	if err != nil {
		t.Fatal(err)
	}
	checkRedirect(t, request(srv, "GET", "/auth/confirm?token="+url.QueryEscape(token), nil, nil), "/auth/login?confirmed=1")
	return signIn(t, srv, email, auth.DashboardFor(user.Role))
}

func signIn(t *testing.T, srv *Service, email, dashboard string) *http.Cookie {
	t.Helper()
	rr := request(srv, "POST", "/auth/login", url.Values{"login": {email}, "password": {testPassword}}, nil)
	checkRedirect(t, rr, dashboard)
	for _, c := range rr.Result().Cookies() {
		if c.Name == srv.Config.CookieName {
			if !c.HttpOnly {
				t.Fatal("Session cookie is not HttpOnly")
			}
			return c
		}
	}
	t.Fatal("No session cookie set")
	return nil
}

func TestLoginRedirect(t *testing.T) {
	srv := newTestService(t)
	bad := &http.Cookie{Name: srv.Config.CookieName, Value: "bad"}

	for _, route := range []string{
		"/merchant/dashboard",
		"/merchant/forms/new",
		"/merchant/forms/42/edit",
		"/merchant/forms/42/submissions",
		"/merchant/forms/42/submissions.csv",
		"/client/dashboard",
	} {
		checkRedirect(t, request(srv, "GET", route, nil, nil), auth.LoginPath)
		checkRedirect(t, request(srv, "GET", route, nil, bad), auth.LoginPath)
	}
	checkRedirect(t, request(srv, "POST", "/merchant/forms/42/publish", nil, nil), auth.LoginPath)
	checkRedirect(t, request(srv, "POST", "/merchant/forms/42/delete", nil, nil), auth.LoginPath)
}

func TestPublicPages(t *testing.T) {
	srv := newTestService(t)
	checkPage(t, request(srv, "GET", "/", nil, nil), http.StatusOK, "Get Started Free")
	checkPage(t, request(srv, "GET", "/auth/login", nil, nil), http.StatusOK, "Sign In")
	checkPage(t, request(srv, "GET", "/auth/login?confirmed=1", nil, nil), http.StatusOK, "Your email address is confirmed")
	checkPage(t, request(srv, "GET", "/auth/signup", nil, nil), http.StatusOK, "Create an account")
	checkPage(t, request(srv, "GET", "/auth/check-email", nil, nil), http.StatusOK, "confirmation link")
}

func TestSignUpAndSignIn(t *testing.T) {
	srv := newTestService(t)

	values := url.Values{
		"full_name": {"Mia Merchant"},
		"email":     {"mia@example.com"},
		"password":  {testPassword},
		"role":      {"merchant"},
	}
	checkRedirect(t, request(srv, "POST", "/auth/signup", values, nil), "/auth/check-email")

	// duplicate address
	values.Set("email", " MIA@example.com ")
	checkPage(t, request(srv, "POST", "/auth/signup", values, nil), http.StatusBadRequest, "already exists")

	values.Set("email", "not-an-address")
	checkPage(t, request(srv, "POST", "/auth/signup", values, nil), http.StatusBadRequest, "valid email address")

	values.Set("email", "short@example.com")
	values.Set("password", "short")
	checkPage(t, request(srv, "POST", "/auth/signup", values, nil), http.StatusBadRequest, "at least 8 characters")

	login := url.Values{"login": {"mia@example.com"}, "password": {testPassword}}
	checkPage(t, request(srv, "POST", "/auth/login", login, nil), http.StatusForbidden, "confirm your email")

	login.Set("password", "wrong password")
	checkPage(t, request(srv, "POST", "/auth/login", login, nil), http.StatusUnauthorized, "Invalid email or password")

	checkPage(t, request(srv, "GET", "/auth/confirm?token=garbage", nil, nil), http.StatusBadRequest, "Invalid or expired")

	user, err := srv.db.GetUserByEmail(context.Background(), "mia@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.db.ConfirmUser(context.Background(), user.ID); err != nil {
		t.Fatal(err)
	}
	cookie := signIn(t, srv, "mia@example.com", "/merchant/dashboard")

	// signed in users skip the login page
	checkRedirect(t, request(srv, "GET", "/auth/login", nil, cookie), "/merchant/dashboard")
	// merchants can't see the client dashboard
	checkRedirect(t, request(srv, "GET", "/client/dashboard", nil, cookie), "/merchant/dashboard")
	checkPage(t, request(srv, "GET", "/merchant/dashboard", nil, cookie), http.StatusOK, "Mia Merchant")

	checkRedirect(t, request(srv, "POST", "/auth/logout", nil, cookie), "/")
	checkRedirect(t, request(srv, "GET", "/merchant/dashboard", nil, cookie), auth.LoginPath)
}

func TestFormLifecycle(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()
	merchant := signUp(t, srv, "Mia Merchant", "mia@example.com", "merchant")
	client := signUp(t, srv, "Carl Client", "carl@example.com", "client")

	// clients can't use the builder
	checkRedirect(t, request(srv, "GET", "/merchant/forms/new", nil, client), "/client/dashboard")

	checkPage(t, request(srv, "GET", "/merchant/forms/new", nil, merchant), http.StatusOK, "Create Form")

	// adding a field round trips the builder state
	rr := request(srv, "POST", "/merchant/forms/new", url.Values{"title": {"Contact"}, "action": {"add"}}, merchant)
	doc := checkPage(t, rr, http.StatusOK, `value="Contact"`)
	if findID(doc, "label-0") == nil {
		t.Fatal("Added field not shown in builder")
	}

	fields := url.Values{
		"title":       {""},
		"description": {"Get in touch"},
		"field_id":    {"", ""},
		"field_type":  {"text", "checkbox"},
		"label":       {"Name", "Interests"},
		"placeholder": {"Your name", ""},
		"options":     {"", "A\nB\n"},
		"required":    {"0"},
		"action":      {"save"},
	}
	doc = checkPage(t, request(srv, "POST", "/merchant/forms/new", fields, merchant), http.StatusBadRequest, "Please enter a form title")
	if findID(doc, "builder-error") == nil {
		t.Fatal("Validation message not shown")
	}

	fields.Set("title", "Contact")
	checkRedirect(t, request(srv, "POST", "/merchant/forms/new", fields, merchant), "/merchant/dashboard")

	mia, _ := srv.db.GetUserByEmail(ctx, "mia@example.com")
	forms, err := srv.db.MerchantForms(ctx, mia.ID)
	if err != nil || len(forms) != 1 {
		t.Fatalf("Expected one stored form, got %d (%v)", len(forms), err)
	}
	formID := forms[0].ID
	stored, err := srv.db.FormFields(ctx, formID)
	if err != nil || len(stored) != 2 {
		t.Fatalf("Expected two stored fields, got %d (%v)", len(stored), err)
	}
	nameInput, interestsInput := "f-"+stored[0].ID, "f-"+stored[1].ID

	checkPage(t, request(srv, "GET", "/merchant/dashboard", nil, merchant), http.StatusOK, "Contact")
	checkPage(t, request(srv, "GET", "/merchant/forms/"+formID+"/edit", nil, merchant), http.StatusOK, "Edit Form")

	// unpublished and missing forms
	doc = checkPage(t, request(srv, "GET", "/submit/"+formID, nil, nil), http.StatusNotFound, "Form not available")
	if findID(doc, "unavailable") == nil {
		t.Fatal("Inline message missing")
	}
	checkPage(t, request(srv, "GET", "/submit/does-not-exist", nil, nil), http.StatusNotFound, "Form not found")

	checkRedirect(t, request(srv, "POST", "/merchant/forms/"+formID+"/publish", nil, merchant), "/merchant/dashboard")
	checkPage(t, request(srv, "GET", "/submit/"+formID, nil, nil), http.StatusOK, "Get in touch")

	// other merchants can't touch the form
	other := signUp(t, srv, "Olga Other", "olga@example.com", "merchant")
	checkRedirect(t, request(srv, "GET", "/merchant/forms/"+formID+"/submissions", nil, other), "/merchant/dashboard")
	checkRedirect(t, request(srv, "POST", "/merchant/forms/"+formID+"/delete", nil, other), "/merchant/dashboard")

	// required field missing
	checkPage(t, request(srv, "POST", "/submit/"+formID, url.Values{}, nil), http.StatusBadRequest, "Name is required")

	// invalid options are dropped, selection order is kept
	answers := url.Values{nameInput: {"Alice"}, interestsInput: {"B", "Z", "A"}}
	doc = checkPage(t, request(srv, "POST", "/submit/"+formID, answers, client), http.StatusOK, "Thank you!")
	if findID(doc, "submitted") == nil {
		t.Fatal("Confirmation not shown")
	}
	answers = url.Values{nameInput: {"Guest Person"}}
	checkPage(t, request(srv, "POST", "/submit/"+formID, answers, nil), http.StatusOK, "Thank you!")

	checkPage(t, request(srv, "GET", "/client/dashboard", nil, client), http.StatusOK, "Contact")
	checkPage(t, request(srv, "GET", "/merchant/forms/"+formID+"/submissions", nil, merchant), http.StatusOK, "Carl Client")

	rr = request(srv, "GET", "/merchant/forms/"+formID+"/submissions.csv", nil, merchant)
	if rr.Code != http.StatusOK {
		t.Fatalf("Export failed with status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=submissions-") {
		t.Fatalf("Unexpected content disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], `"Submitted At","Submitted By","Name","Interests"`) {
		t.Fatalf("Unexpected header %s", lines[0])
	}
	if !strings.Contains(rr.Body.String(), `"Alice","B, A"`) {
		t.Fatalf("Client submission missing from export: %s", rr.Body.String())
	}

	checkRedirect(t, request(srv, "POST", "/merchant/forms/"+formID+"/delete", nil, merchant), "/merchant/dashboard")
	checkPage(t, request(srv, "GET", "/submit/"+formID, nil, nil), http.StatusNotFound, "Form not found")
}

// firstButton returns the first button element below n.
func firstButton(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "button" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstButton(c); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestBuilderDefaultAction(t *testing.T) {
	srv := newTestService(t)
	merchant := signUp(t, srv, "Mia Merchant", "mia@example.com", "merchant")

	// pressing Enter submits the first button of the form
	doc := checkPage(t, request(srv, "GET", "/merchant/forms/new", nil, merchant), http.StatusOK, "Add Field")
	builderForm := findID(doc, "builder")
	if builderForm == nil {
		t.Fatal("Builder form missing")
	}
	btn := firstButton(builderForm)
	if btn == nil || attr(btn, "name") != "action" || attr(btn, "value") != "save" {
		t.Fatalf("First button of the builder does not save: %+v", btn)
	}

	values := url.Values{"title": {"Contact"}, attr(btn, "name"): {attr(btn, "value")}}
	doc = checkPage(t, request(srv, "POST", "/merchant/forms/new", values, merchant), http.StatusBadRequest, "Please add at least one field")
	if findID(doc, "label-0") != nil {
		t.Fatal("Default action added a field")
	}
}

func TestEditForm(t *testing.T) {
	srv := newTestService(t)
	ctx := context.Background()
	merchant := signUp(t, srv, "Mia Merchant", "mia@example.com", "merchant")

	values := url.Values{
		"title":       {"Survey"},
		"description": {""},
		"field_id":    {"", ""},
		"field_type":  {"text", "email"},
		"label":       {"Name", "Mail"},
		"placeholder": {"", ""},
		"options":     {"", ""},
		"action":      {"save"},
	}
	checkRedirect(t, request(srv, "POST", "/merchant/forms/new", values, merchant), "/merchant/dashboard")
	mia, _ := srv.db.GetUserByEmail(ctx, "mia@example.com")
	forms, err := srv.db.MerchantForms(ctx, mia.ID)
	if err != nil || len(forms) != 1 {
		t.Fatalf("Expected one stored form, got %d (%v)", len(forms), err)
	}
	route := "/merchant/forms/" + forms[0].ID + "/edit"
	stored, _ := srv.db.FormFields(ctx, forms[0].ID)

	checkPage(t, request(srv, "GET", route, nil, merchant), http.StatusOK, `value="Mail"`)

	// edited labels survive a move
	values.Set("title", "Survey 2")
	values["field_id"] = []string{stored[0].ID, stored[1].ID}
	values["label"] = []string{"Full name", "Mail"}
	values.Set("action", "up-1")
	body := checkPage(t, request(srv, "POST", route, values, merchant), http.StatusOK, "Edit Form")
	label0 := findID(body, "label-0")
	label1 := findID(body, "label-1")
	if label0 == nil || label1 == nil || attr(label0, "value") != "Mail" || attr(label1, "value") != "Full name" {
		t.Fatal("Move did not apply to the posted fields")
	}

	values["field_id"] = []string{stored[1].ID, stored[0].ID}
	values["field_type"] = []string{"email", "text"}
	values["label"] = []string{"Mail", "Full name"}
	values.Set("action", "save")
	checkRedirect(t, request(srv, "POST", route, values, merchant), "/merchant/dashboard")

	f, err := srv.db.GetForm(ctx, forms[0].ID)
	if err != nil || f.Title != "Survey 2" {
		t.Fatalf("Form not updated: %+v (%v)", f, err)
	}
	fields, err := srv.db.FormFields(ctx, f.ID)
	if err != nil || len(fields) != 2 {
		t.Fatalf("Expected two fields, got %d (%v)", len(fields), err)
	}
	if fields[0].Label != "Mail" || fields[1].Label != "Full name" {
		t.Fatalf("Unexpected field order after edit: %q, %q", fields[0].Label, fields[1].Label)
	}
}
