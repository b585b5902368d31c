package formsrv

import (
	"errors"
	"net/http"

	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/G-Node/formsrv/formsrv/form"
	"github.com/G-Node/formsrv/formsrv/report"
	"github.com/G-Node/formsrv/formsrv/submission"
	"github.com/G-Node/formsrv/templates"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// submitOption is an option of a choice field on the submission page.
type submitOption struct {
	Value   string
	Checked bool
}

// submitField is a field as rendered on the submission page.
type submitField struct {
	Name        string
	Label       string
	Placeholder string
	Required    bool
	Input       string
	Text        string
	Error       string
	Options     []submitOption
}

// inputName returns the name of the input element of a field.
func inputName(f form.Field) string {
	return "f-" + f.ID
}

func submitFields(e *submission.Engine) []submitField {
	errs := e.Errors()
	fields := make([]submitField, len(e.Fields()))
	for idx, f := range e.Fields() {
		spec := f.Spec()
		v := e.Value(f.ID)
		sf := submitField{
			Name:        inputName(f),
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Input:       spec.Input,
			Text:        v.Text,
			Error:       errs[f.ID],
		}
		if spec.Choice {
			selected := make(map[string]bool)
			if spec.Multi {
				for _, s := range v.Selected {
					selected[s] = true
				}
			} else {
				selected[v.Text] = true
			}
			sf.Options = make([]submitOption, len(f.Options))
			for oidx, opt := range f.Options {
				sf.Options[oidx] = submitOption{Value: opt, Checked: selected[opt]}
			}
		}
		fields[idx] = sf
	}
	return fields
}

func (srv *Service) renderSubmit(w http.ResponseWriter, status int, user *db.User, e *submission.Engine, alert string) {
	f := e.Form()
	data := pageData(user, f.Title)
	data["form"] = f
	data["fields"] = submitFields(e)
	data["alert"] = alert
	data["submitted"] = e.State() == submission.Submitted
	srv.render(w, status, templates.Submit, data)
}

func (srv *Service) renderUnavailable(w http.ResponseWriter, user *db.User, title, detail string) {
	data := pageData(user, title)
	data["unavailable"] = title
	data["detail"] = detail
	srv.render(w, http.StatusNotFound, templates.Submit, data)
}

// publishedForm loads the form named in the route for submission.  For
// missing or unpublished forms, the inline message is rendered and nil is
// returned.
func (srv *Service) publishedForm(w http.ResponseWriter, r *http.Request, user *db.User) *submission.Engine {
	id := mux.Vars(r)["id"]
	f, err := srv.db.GetForm(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		srv.renderUnavailable(w, user, "Form not found", "This form doesn't exist or has been removed.")
		return nil
	} else if err != nil {
		srv.log.Error("Failed to load form", zap.String("form", id), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return nil
	}
	if !f.IsPublished {
		srv.renderUnavailable(w, user, "Form not available", "This form is not currently accepting submissions.")
		return nil
	}
	fields, err := srv.db.FormFields(r.Context(), f.ID)
	if err != nil {
		srv.log.Error("Failed to load fields", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return nil
	}
	return submission.NewEngine(*f, fields)
}

func (srv *Service) renderSubmitPage(w http.ResponseWriter, r *http.Request) {
	user := srv.currentUser(r)
	e := srv.publishedForm(w, r, user)
	if e == nil {
		return
	}
	srv.renderSubmit(w, http.StatusOK, user, e, "")
}

// loadInput copies the posted values into the engine.  Values of choice
// fields that are not among the field's options are ignored.  Checkbox
// selections keep the order in which they were posted.
func loadInput(r *http.Request, e *submission.Engine) {
	for _, f := range e.Fields() {
		spec := f.Spec()
		posted := r.PostForm[inputName(f)]
		switch {
		case spec.Multi:
			for _, v := range posted {
				if f.HasOption(v) {
					e.Toggle(f.ID, v, true)
				}
			}
		case len(posted) == 0:
			e.SetText(f.ID, "")
		case spec.Choice && !f.HasOption(posted[0]):
			e.SetText(f.ID, "")
		default:
			e.SetText(f.ID, posted[0])
		}
	}
}

func (srv *Service) submitPost(w http.ResponseWriter, r *http.Request) {
	user := srv.currentUser(r)
	e := srv.publishedForm(w, r, user)
	if e == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "invalid form data")
		return
	}
	loadInput(r, e)

	clientID := ""
	if user != nil {
		clientID = user.ID
	}
	sub, err := e.Submit(r.Context(), srv.db, clientID)
	var errs form.Errors
	if errors.As(err, &errs) {
		srv.renderSubmit(w, http.StatusBadRequest, user, e, "")
		return
	} else if err != nil {
		srv.log.Error("Failed to store submission", zap.String("form", e.Form().ID), zap.Error(err))
		srv.renderSubmit(w, http.StatusInternalServerError, user, e, "Failed to submit form. Please try again.")
		return
	}
	srv.log.Info("Submission stored", zap.String("form", sub.FormID), zap.String("submission", sub.ID))
	srv.renderSubmit(w, http.StatusOK, user, e, "")
}

// clientSubmissionView is a submission as listed on the client dashboard.
type clientSubmissionView struct {
	FormTitle       string
	FormDescription string
	SubmittedAt     string
}

func (srv *Service) clientDashboard(w http.ResponseWriter, r *http.Request, user *db.User) {
	subs, err := srv.db.ClientSubmissions(r.Context(), user.ID)
	if err != nil {
		srv.log.Error("Failed to list submissions", zap.String("client", user.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	views := make([]clientSubmissionView, len(subs))
	for idx, s := range subs {
		views[idx] = clientSubmissionView{
			FormTitle:       s.FormTitle,
			FormDescription: s.FormDescription,
			SubmittedAt:     s.SubmittedAt.In(srv.loc).Format(report.TimeFormat),
		}
	}
	data := pageData(user, "My Submissions")
	data["submissions"] = views
	srv.render(w, http.StatusOK, templates.ClientDashboard, data)
}
