package formsrv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/G-Node/formsrv/formsrv/builder"
	"github.com/G-Node/formsrv/formsrv/db"
	"github.com/G-Node/formsrv/formsrv/form"
	"github.com/G-Node/formsrv/formsrv/report"
	"github.com/G-Node/formsrv/templates"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const merchantHome = "/merchant/dashboard"

func (srv *Service) merchantDashboard(w http.ResponseWriter, r *http.Request, user *db.User) {
	forms, err := srv.db.MerchantForms(r.Context(), user.ID)
	if err != nil {
		srv.log.Error("Failed to list forms", zap.String("merchant", user.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	data := pageData(user, "My Forms")
	data["forms"] = forms
	srv.render(w, http.StatusOK, templates.MerchantDashboard, data)
}

// ownedForm loads the form named in the route if it belongs to the user.
// Otherwise the request is redirected to the dashboard and nil is returned.
func (srv *Service) ownedForm(w http.ResponseWriter, r *http.Request, user *db.User) *form.Form {
	id := mux.Vars(r)["id"]
	f, err := srv.db.GetMerchantForm(r.Context(), id, user.ID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			srv.log.Error("Failed to load form", zap.String("form", id), zap.Error(err))
			srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
			return nil
		}
		http.Redirect(w, r, merchantHome, http.StatusFound)
		return nil
	}
	return f
}

// builderField is a field as shown in the builder page.
type builderField struct {
	Index       int
	ID          string
	Type        form.FieldType
	Label       string
	Placeholder string
	OptionsText string
	Required    bool
	First       bool
	Last        bool
}

func (srv *Service) renderBuilder(w http.ResponseWriter, status int, user *db.User, b *builder.Builder, action, message string) {
	title := "Create Form"
	if !b.IsNew() {
		title = "Edit Form"
	}
	fields := make([]builderField, len(b.Fields))
	for idx, f := range b.Fields {
		fields[idx] = builderField{
			Index:       idx,
			ID:          f.ID,
			Type:        f.Type,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			OptionsText: strings.Join(f.Options, "\n"),
			Required:    f.Required,
			First:       idx == 0,
			Last:        idx == len(b.Fields)-1,
		}
	}
	data := pageData(user, title)
	data["action"] = action
	data["editing"] = !b.IsNew()
	data["error"] = message
	data["form_title"] = b.Title
	data["description"] = b.Description
	data["fields"] = fields
	data["types"] = form.Types()
	srv.render(w, status, templates.Builder, data)
}

// parseBuilderForm reads the builder state posted by the builder page into
// b: the title, the description and the complete field sequence.
func parseBuilderForm(r *http.Request, b *builder.Builder) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	b.Title = r.PostForm.Get("title")
	b.Description = r.PostForm.Get("description")

	ids := r.PostForm["field_id"]
	types := r.PostForm["field_type"]
	labels := r.PostForm["label"]
	placeholders := r.PostForm["placeholder"]
	options := r.PostForm["options"]
	n := len(ids)
	if len(types) != n || len(labels) != n || len(placeholders) != n || len(options) != n {
		return fmt.Errorf("incomplete field data")
	}
	required := make(map[int]bool)
	for _, v := range r.PostForm["required"] {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid required flag %q", v)
		}
		required[idx] = true
	}

	b.Fields = make([]form.Field, n)
	for idx := 0; idx < n; idx++ {
		ft, err := form.ParseFieldType(types[idx])
		if err != nil {
			return err
		}
		b.Fields[idx] = form.Field{
			ID:          ids[idx],
			Type:        ft,
			Label:       labels[idx],
			Placeholder: placeholders[idx],
			Required:    required[idx],
			Options:     form.ParseOptions(options[idx]),
			OrderIndex:  idx,
		}
	}
	return nil
}

// applyAction performs a builder action other than save.  It returns false
// for unknown actions.
func applyAction(b *builder.Builder, action string) bool {
	if action == "add" {
		b.Append()
		return true
	}
	name, arg, ok := strings.Cut(action, "-")
	if !ok {
		return false
	}
	idx, err := strconv.Atoi(arg)
	if err != nil {
		return false
	}
	switch name {
	case "up":
		b.Move(idx, builder.Up)
	case "down":
		b.Move(idx, builder.Down)
	case "remove":
		return b.Remove(idx) == nil
	default:
		return false
	}
	return true
}

// builderPost handles a post from the builder page: it either applies an
// editing action and shows the page again, or saves the form.
func (srv *Service) builderPost(w http.ResponseWriter, r *http.Request, user *db.User, b *builder.Builder, action string) {
	if err := parseBuilderForm(r, b); err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	switch act := r.PostForm.Get("action"); act {
	case "save", "":
		f, err := b.Save(r.Context(), srv.db)
		var verr *builder.ValidationError
		if errors.As(err, &verr) {
			srv.renderBuilder(w, http.StatusBadRequest, user, b, action, verr.Message)
			return
		} else if err != nil {
			srv.log.Error("Failed to save form", zap.String("merchant", user.ID), zap.String("form", b.FormID), zap.Error(err))
			srv.renderBuilder(w, http.StatusInternalServerError, user, b, action, "Failed to save form. Please try again.")
			return
		}
		srv.log.Info("Form saved", zap.String("form", f.ID), zap.Int("fields", len(b.Fields)))
		http.Redirect(w, r, merchantHome, http.StatusFound)
	default:
		if !applyAction(b, act) {
			srv.web.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", act))
			return
		}
		srv.renderBuilder(w, http.StatusOK, user, b, action, "")
	}
}

func (srv *Service) newFormPage(w http.ResponseWriter, r *http.Request, user *db.User) {
	srv.renderBuilder(w, http.StatusOK, user, builder.New(user.ID), r.URL.Path, "")
}

func (srv *Service) newFormPost(w http.ResponseWriter, r *http.Request, user *db.User) {
	srv.builderPost(w, r, user, builder.New(user.ID), r.URL.Path)
}

func (srv *Service) editFormPage(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	fields, err := srv.db.FormFields(r.Context(), f.ID)
	if err != nil {
		srv.log.Error("Failed to load fields", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	srv.renderBuilder(w, http.StatusOK, user, builder.Edit(*f, fields), r.URL.Path, "")
}

func (srv *Service) editFormPost(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	b := builder.Edit(*f, nil)
	b.Policy = srv.policy
	srv.builderPost(w, r, user, b, r.URL.Path)
}

func (srv *Service) togglePublished(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	if err := srv.db.SetPublished(r.Context(), f.ID, !f.IsPublished); err != nil {
		srv.log.Error("Failed to change published state", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	http.Redirect(w, r, merchantHome, http.StatusFound)
}

func (srv *Service) deleteForm(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	if err := srv.db.DeleteForm(r.Context(), f.ID); err != nil {
		srv.log.Error("Failed to delete form", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	srv.log.Info("Form deleted", zap.String("form", f.ID))
	http.Redirect(w, r, merchantHome, http.StatusFound)
}

// reportSubmissions loads the submissions report of a form and logs answers
// that could not be matched to a field.
func (srv *Service) reportSubmissions(ctx context.Context, formID string) ([]report.Submission, error) {
	subs, orphaned, err := srv.db.ReportSubmissions(ctx, formID)
	if err != nil {
		return nil, err
	}
	if orphaned > 0 {
		srv.log.Warn("Answers without field left out of report", zap.String("form", formID), zap.Int("answers", orphaned))
	}
	return subs, nil
}

// submissionView is a submission as shown in the submissions listing.
type submissionView struct {
	SubmittedAt string
	Submitter   string
	Guest       bool
	Preview     []report.Answer
	More        string
	Answers     []report.Answer
}

func (srv *Service) renderSubmissions(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	subs, err := srv.reportSubmissions(r.Context(), f.ID)
	if err != nil {
		srv.log.Error("Failed to load submissions", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	views := make([]submissionView, len(subs))
	for idx, s := range subs {
		preview, more := report.Preview(s.Answers, report.PreviewCount)
		views[idx] = submissionView{
			SubmittedAt: s.SubmittedAt.In(srv.loc).Format(report.TimeFormat),
			Submitter:   s.SubmitterName(),
			Guest:       s.IsGuest(),
			Preview:     preview,
			More:        more,
			Answers:     s.Answers,
		}
	}
	data := pageData(user, f.Title)
	data["form"] = f
	data["submissions"] = views
	srv.render(w, http.StatusOK, templates.Submissions, data)
}

// Export writes the CSV export of the submissions of a form.
func (srv *Service) Export(ctx context.Context, formID string, w io.Writer) error {
	if _, err := srv.db.GetForm(ctx, formID); err != nil {
		return fmt.Errorf("form %s: %w", formID, err)
	}
	subs, err := srv.reportSubmissions(ctx, formID)
	if err != nil {
		return err
	}
	return report.WriteCSV(w, subs, srv.loc)
}

func (srv *Service) exportSubmissions(w http.ResponseWriter, r *http.Request, user *db.User) {
	f := srv.ownedForm(w, r, user)
	if f == nil {
		return
	}
	buf := new(bytes.Buffer)
	if err := srv.Export(r.Context(), f.ID, buf); err != nil {
		srv.log.Error("Failed to export submissions", zap.String("form", f.ID), zap.Error(err))
		srv.web.ErrorResponse(w, http.StatusInternalServerError, msgGeneric)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
