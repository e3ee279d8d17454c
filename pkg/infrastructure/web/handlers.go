package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/i18n"
	"github.com/felixgeelhaar/featurecraft/pkg/application"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/session"
	"github.com/felixgeelhaar/featurecraft/pkg/domain/workitem"
	"github.com/felixgeelhaar/featurecraft/pkg/tracker"
)

// PageData holds data for template rendering.
type PageData struct {
	L        *i18n.Set
	Session  session.Snapshot
	Choices  []i18n.Choice
	Projects []workitem.Project
	Project  string

	// Generate Tasks screen.
	Features []workitem.WorkItem
	Feature  *application.FeatureView

	// Feature Builder screen.
	Form FeatureForm

	Created []tracker.CreatedItem
	Failed  []*tracker.ItemError
	Success string
	Warning string
	Error   string
}

// FeatureForm is the Feature Builder input as entered.
type FeatureForm struct {
	Title       string
	Description string
	Effort      int
	Priority    int
	MinEffort   int
	MaxEffort   int
	MinPriority int
	MaxPriority int
}

func newFeatureForm() FeatureForm {
	return FeatureForm{
		Effort:      workitem.DefaultEffort,
		Priority:    workitem.DefaultPriority,
		MinEffort:   workitem.MinEffort,
		MaxEffort:   workitem.MaxEffort,
		MinPriority: workitem.MinPriority,
		MaxPriority: workitem.MaxPriority,
	}
}

var pagePaths = map[string]string{
	session.PageGenerateTasks:  "/tasks",
	session.PageFeatureBuilder: "/features/new",
}

// begin resolves the session and builds the common page data.
func (s *Server) begin(w http.ResponseWriter, r *http.Request) (*session.Session, *PageData, bool) {
	sess, err := s.session(w, r)
	if err != nil {
		s.logger.Error("session lookup failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, false
	}
	snap := sess.Snapshot()
	labels, err := i18n.Labels(snap.Lang)
	if err != nil {
		s.logger.Error("labels unavailable", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, false
	}
	return sess, &PageData{L: labels, Session: snap, Choices: i18n.Choices}, true
}

// open moves the session to page if it is elsewhere.
func open(sess *session.Session, page string) {
	if sess.Snapshot().Page == page {
		return
	}
	if event, ok := session.EventFor(page); ok {
		_ = sess.Navigate(event)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, pagePaths[sess.Snapshot().Page], http.StatusSeeOther)
}

// loadProjects fills the project list and resolves the selected project:
// the requested one, else the session's, else the first listed.
func (s *Server) loadProjects(r *http.Request, data *PageData, requested string) bool {
	projects, err := s.backlog.Projects(r.Context())
	if err != nil {
		data.Error = s.errorMessage(data.L, err)
		return false
	}
	data.Projects = projects

	project := strings.TrimSpace(requested)
	if project == "" {
		project = data.Session.Project
	}
	if project == "" && len(projects) > 0 {
		project = projects[0].Name
	}
	data.Project = project
	return project != ""
}

// listed reports whether project is one of the tracker's projects.
func listed(projects []workitem.Project, project string) bool {
	for _, p := range projects {
		if p.Name == project {
			return true
		}
	}
	return false
}

// loadFeatures fills the feature list and picks the selected feature. An id
// that is not listed shows the first feature instead and reports false.
func (s *Server) loadFeatures(r *http.Request, data *PageData, featureID int) bool {
	features, err := s.backlog.Features(r.Context(), data.Project)
	if err != nil {
		data.Error = s.errorMessage(data.L, err)
		return false
	}
	data.Features = features
	if len(features) == 0 {
		data.Warning = data.L.T("no_features")
		return false
	}

	item, ok := workitem.FindByID(features, featureID)
	if !ok {
		item = features[0]
	}
	view := application.Describe(item)
	data.Feature = &view
	return ok
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	sess, data, ok := s.begin(w, r)
	if !ok {
		return
	}
	open(sess, session.PageGenerateTasks)
	s.showTasks(r, sess, data, r.URL.Query().Get("project"), r.URL.Query().Get("feature"))
	s.render(w, "tasks.html", data)
}

func (s *Server) showTasks(r *http.Request, sess *session.Session, data *PageData, project, feature string) {
	if !s.loadProjects(r, data, project) {
		return
	}
	featureID, _ := strconv.Atoi(feature)
	if data.Project != data.Session.Project {
		// A different project invalidates the remembered feature.
		data.Session.FeatureID = 0
	}
	if featureID <= 0 {
		featureID = data.Session.FeatureID
	}

	s.loadFeatures(r, data, featureID)
	if data.Feature != nil {
		featureID = data.Feature.ID
	}
	sess.Select(data.Project, featureID)
	data.Session = sess.Snapshot()
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, data, ok := s.begin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	open(sess, session.PageGenerateTasks)

	// Only the posted selection is written to. A stale page must not fall
	// back to another project or feature.
	project := strings.TrimSpace(r.PostForm.Get("project"))
	featureID, _ := strconv.Atoi(r.PostForm.Get("feature"))
	if !s.loadProjects(r, data, project) {
		s.render(w, "tasks.html", data)
		return
	}
	if project == "" || !listed(data.Projects, project) {
		s.logger.Warn("generate for unknown project", "project", project)
		data.Error = data.L.T("error_unknown_project")
		data.Project = ""
		s.render(w, "tasks.html", data)
		return
	}
	found := s.loadFeatures(r, data, featureID)
	if data.Error != "" || data.Feature == nil {
		s.render(w, "tasks.html", data)
		return
	}
	if !found {
		s.logger.Warn("generate for unknown feature", "project", data.Project, "feature_id", featureID)
		data.Error = data.L.T("error_unknown_feature")
		s.render(w, "tasks.html", data)
		return
	}
	sess.Select(data.Project, featureID)
	data.Session = sess.Snapshot()

	if !data.Feature.HasDescription() {
		data.Error = data.L.T("no_description")
		s.render(w, "tasks.html", data)
		return
	}

	lang, _ := application.ParseLanguage(data.Session.Lang)
	result, err := s.backlog.GenerateTasks(r.Context(), data.Project, data.Feature.WorkItem, lang)
	if result != nil && result.Created != nil {
		data.Created = result.Created.Created
		data.Failed = result.Created.Failed
	}
	switch {
	case err != nil:
		s.logger.Warn("generate tasks failed", "project", data.Project, "feature_id", data.Feature.ID, "error", err)
		data.Error = s.errorMessage(data.L, err)
	case len(data.Failed) > 0:
		data.Warning = data.L.T("partial_message_tasks")
	default:
		data.Success = data.L.T("success_message_tasks")
	}
	s.render(w, "tasks.html", data)
}

func (s *Server) handleFeatureForm(w http.ResponseWriter, r *http.Request) {
	sess, data, ok := s.begin(w, r)
	if !ok {
		return
	}
	open(sess, session.PageFeatureBuilder)
	data.Form = newFeatureForm()
	if s.loadProjects(r, data, r.URL.Query().Get("project")) {
		sess.Select(data.Project, 0)
	}
	data.Session = sess.Snapshot()
	s.render(w, "feature.html", data)
}

func (s *Server) handleCreateFeature(w http.ResponseWriter, r *http.Request) {
	sess, data, ok := s.begin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	open(sess, session.PageFeatureBuilder)

	form, formErr := parseFeatureForm(r.PostForm)
	data.Form = form
	proposal := workitem.Proposal{
		Title:       form.Title,
		Description: form.Description,
		Effort:      form.Effort,
		Priority:    form.Priority,
	}
	if formErr == nil {
		formErr = proposal.Validate()
	}
	if formErr != nil {
		// Invalid input is answered without contacting the tracker.
		project := strings.TrimSpace(r.PostForm.Get("project"))
		if project == "" {
			project = data.Session.Project
		}
		if project != "" {
			data.Project = project
			data.Projects = []workitem.Project{{Name: project}}
		}
		data.Error = s.errorMessage(data.L, formErr)
		s.render(w, "feature.html", data)
		return
	}

	if !s.loadProjects(r, data, r.PostForm.Get("project")) {
		s.render(w, "feature.html", data)
		return
	}
	sess.Select(data.Project, 0)
	data.Session = sess.Snapshot()
	result, err := s.backlog.CreateFeature(r.Context(), data.Project, proposal)
	if result != nil {
		data.Created = result.Created
		data.Failed = result.Failed
	}
	if err != nil {
		s.logger.Warn("create feature failed", "project", data.Project, "error", err)
		data.Error = s.errorMessage(data.L, err)
		s.render(w, "feature.html", data)
		return
	}

	data.Success = data.L.T("success_message_feature")
	data.Form = newFeatureForm()
	s.render(w, "feature.html", data)
}

// parseFeatureForm reads the Feature Builder fields. Non-numeric effort or
// priority is a validation error; range checks happen in the domain.
func parseFeatureForm(v url.Values) (FeatureForm, error) {
	form := newFeatureForm()
	form.Title = strings.TrimSpace(v.Get("title"))
	form.Description = v.Get("description")

	if raw := strings.TrimSpace(v.Get("effort")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return form, &workitem.ValidationError{Field: "effort", Reason: "must be a whole number"}
		}
		form.Effort = n
	}
	if raw := strings.TrimSpace(v.Get("priority")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return form, &workitem.ValidationError{Field: "priority", Reason: "must be a whole number"}
		}
		form.Priority = n
	}
	return form, nil
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	page := r.FormValue("page")
	event, ok := session.EventFor(page)
	if !ok {
		http.Error(w, "unknown page", http.StatusBadRequest)
		return
	}
	if err := sess.Navigate(event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, pagePaths[sess.Snapshot().Page], http.StatusSeeOther)
}

func (s *Server) handleLang(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sess.SetLang(i18n.Normalize(r.FormValue("lang")))
	http.Redirect(w, r, pagePaths[sess.Snapshot().Page], http.StatusSeeOther)
}

// errorMessage turns a flow error into the text shown on the page.
func (s *Server) errorMessage(l *i18n.Set, err error) string {
	var verr *workitem.ValidationError
	var malformed *application.MalformedResponseError
	switch {
	case errors.As(err, &verr):
		if verr.Field == "title" {
			return l.T("error_message")
		}
		return verr.Error()
	case errors.As(err, &malformed):
		return l.T("error_malformed")
	case tracker.IsAuth(err):
		return l.T("error_auth")
	case tracker.IsUnavailable(err):
		return l.T("error_unavailable")
	default:
		return l.T("error_generic") + " " + err.Error()
	}
}
