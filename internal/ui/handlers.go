package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/me/covweb/internal/vanlist"
	"github.com/me/covweb/pkg/model"
)

// createNewEvent is the event choice that asks for a new event.
const createNewEvent = "create_new"

// Backend is what the UI needs from the covweb backend. *client.Client
// implements it.
type Backend interface {
	vanlist.Fetcher
	ListEvents(ctx context.Context) ([]model.Event, error)
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.CreateEventResult, error)
	ListCOVs(ctx context.Context) ([]model.COV, error)
	MissingVideos(ctx context.Context) ([]model.InspectionRecord, error)
	LogoutURL() string
}

// UI handles the web user interface.
type UI struct {
	backend  Backend
	sessions *SessionManager
	logger   *slog.Logger
	secure   bool // Use secure cookies (HTTPS)
}

// Config holds UI configuration.
type Config struct {
	Secure     bool          // Use secure cookies for HTTPS
	MediaBase  string        // Prefix for thumbnail and video URLs; empty for same origin
	SessionTTL time.Duration // Idle lifetime of a session
}

// New creates a new UI handler.
func New(backend Backend, logger *slog.Logger, cfg Config) *UI {
	ui := &UI{
		backend: backend,
		logger:  logger.With("component", "ui"),
		secure:  cfg.Secure,
	}
	renderer := vanlist.HTMLRenderer{MediaBase: cfg.MediaBase}
	ui.sessions = NewSessionManager(cfg.SessionTTL, func(controls *Controls, view *FragmentView) *vanlist.Controller {
		return vanlist.New(backend, controls, view,
			vanlist.WithRenderer(renderer),
			vanlist.WithLogger(logger),
		)
	})
	return ui
}

// Sessions returns the session manager.
func (ui *UI) Sessions() *SessionManager {
	return ui.sessions
}

// HandleHome renders the page with the session's visible section.
func (ui *UI) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	data := map[string]any{
		"Title":   "COV Inspections",
		"Section": sess.View.Section(),
	}

	switch sess.View.Section() {
	case SectionVans:
		if !sess.Controller.State().Loaded {
			ui.logRefresh(sess, sess.Controller.Refresh(r.Context()))
		}
		ui.addVansData(sess, data)
	case SectionEvents:
		ui.addEventsData(r.Context(), sess, data)
	case SectionMissing:
		ui.addMissingData(r.Context(), r.URL.Query().Get("event"), data)
	}
	ui.render(w, "home", data)
}

// HandleVans opens the inspected-vans section.
func (ui *UI) HandleVans(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	ui.logRefresh(sess, sess.Controller.Open(r.Context()))

	data := map[string]any{"Title": "Inspected Vans - COV Inspections"}
	ui.addVansData(sess, data)
	ui.renderSection(w, r, sess, "vans", data)
}

// HandleVansRefresh applies the sort and page size selection and reloads
// the current page.
func (ui *UI) HandleVansRefresh(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := SessionFromContext(r.Context())
	sess.Controls.Set(r.FormValue("sort"), r.FormValue("per_page"))
	ui.logRefresh(sess, sess.Controller.Refresh(r.Context()))
	ui.renderResults(w, r, sess)
}

// HandleVansPage moves the listing to another page. Pages outside the
// known range answer 204 so htmx leaves the list as it is.
func (ui *UI) HandleVansPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	sess := SessionFromContext(r.Context())
	err = sess.Controller.GoToPage(r.Context(), n)
	if errors.Is(err, vanlist.ErrPageOutOfRange) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ui.logRefresh(sess, err)
	ui.renderResults(w, r, sess)
}

// HandleEvents opens the event selection section.
func (ui *UI) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	sess.View.ShowSection(SectionEvents)

	data := map[string]any{"Title": "Select Event - COV Inspections"}
	ui.addEventsData(r.Context(), sess, data)
	ui.renderSection(w, r, sess, "events", data)
}

// HandleEventSelect processes the event selection form. An empty choice is
// answered with a prompt without contacting the backend.
func (ui *UI) HandleEventSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := SessionFromContext(r.Context())
	choice := strings.TrimSpace(r.FormValue("event"))
	data := map[string]any{}

	switch choice {
	case "":
		data["Prompt"] = "Please select an event"
	case createNewEvent:
		name := strings.TrimSpace(r.FormValue("new_event_name"))
		if name == "" {
			data["Prompt"] = "Please enter a name for the new event"
			break
		}
		res, err := ui.backend.CreateEvent(r.Context(), model.CreateEventRequest{
			Name:        name,
			ForceCreate: r.FormValue("force") != "",
		})
		if err != nil {
			ui.logger.Error("create event failed", "name", name, "error", err)
			data["Error"] = "Error creating event. Please try again."
			break
		}
		switch res.Status {
		case model.EventStatusSuccess:
			ui.selectEvent(r.Context(), sess, name, data)
		case model.EventStatusSimilar:
			data["Similar"] = res.SimilarEvents
			data["Message"] = res.Message
			data["RequestedName"] = name
		default:
			data["Error"] = "Error creating event: " + res.Message
		}
	default:
		ui.selectEvent(r.Context(), sess, choice, data)
	}

	ui.renderFragment(w, "eventResult", data)
}

// HandleMissing opens the attach-videos section listing inspections
// without a video, optionally narrowed to one event.
func (ui *UI) HandleMissing(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	sess.View.ShowSection(SectionMissing)

	data := map[string]any{"Title": "Attach Videos - COV Inspections"}
	ui.addMissingData(r.Context(), r.URL.Query().Get("event"), data)
	ui.renderSection(w, r, sess, "missing", data)
}

// HandleLogout drops the session and hands over to the backend logout.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := ui.sessions.GetSessionFromRequest(r); sess != nil {
		ui.sessions.DeleteSession(sess.ID)
		ui.logger.Info("session ended", "session", sess.ID)
	}
	ClearSessionCookie(w)
	http.Redirect(w, r, ui.backend.LogoutURL(), http.StatusSeeOther)
}

func (ui *UI) addVansData(sess *Session, data map[string]any) {
	list, pagination := sess.View.Regions()
	data["Sort"] = sess.Controls.SortKey()
	data["PerPage"] = sess.Controls.PageSize()
	data["SortOptions"] = SortOptions
	data["PageSizeOptions"] = PageSizeOptions
	data["List"] = list
	data["Pagination"] = pagination
}

func (ui *UI) addEventsData(ctx context.Context, sess *Session, data map[string]any) {
	events, err := ui.backend.ListEvents(ctx)
	if err != nil {
		ui.logger.Error("load events failed", "error", err)
		data["EventsError"] = true
	}
	data["Events"] = events
	data["SelectedEvent"] = sess.SelectedEvent()
}

// addMissingData loads the inspections without video and the event list
// concurrently. The event list only feeds the filter, so its failure is
// logged and otherwise ignored.
func (ui *UI) addMissingData(ctx context.Context, event string, data map[string]any) {
	var (
		missing []model.InspectionRecord
		events  []model.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		missing, err = ui.backend.MissingVideos(gctx)
		return err
	})
	g.Go(func() error {
		evs, err := ui.backend.ListEvents(gctx)
		if err != nil {
			ui.logger.Warn("load events failed", "error", err)
			return nil
		}
		events = evs
		return nil
	})
	if err := g.Wait(); err != nil {
		ui.logger.Error("load missing videos failed", "error", err)
		data["MissingError"] = true
		return
	}

	filtered := missing
	if event != "" {
		filtered = make([]model.InspectionRecord, 0, len(missing))
		for _, rec := range missing {
			if rec.EventName == event {
				filtered = append(filtered, rec)
			}
		}
	}
	data["AllAttached"] = len(missing) == 0
	data["Missing"] = filtered
	data["Events"] = events
	data["Event"] = event
}

func (ui *UI) selectEvent(ctx context.Context, sess *Session, name string, data map[string]any) {
	sess.setEvent(name)
	data["Event"] = name

	covs, err := ui.backend.ListCOVs(ctx)
	if err != nil {
		ui.logger.Error("load covs failed", "error", err)
		data["COVsError"] = true
	}
	data["COVs"] = covs
}

// logRefresh records listing failures that the controller already turned
// into an on-page message.
func (ui *UI) logRefresh(sess *Session, err error) {
	if err != nil && !errors.Is(err, vanlist.ErrSuperseded) {
		ui.logger.Debug("listing refresh failed", "session", sess.ID, "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// renderSection answers htmx requests with the section alone and plain
// requests with the whole page.
func (ui *UI) renderSection(w http.ResponseWriter, r *http.Request, sess *Session, component string, data map[string]any) {
	if isHTMX(r) {
		ui.renderFragment(w, component, data)
		return
	}
	data["Section"] = sess.View.Section()
	ui.render(w, "home", data)
}

// renderResults answers with the list and pagination regions. Plain form
// posts are redirected to the page instead.
func (ui *UI) renderResults(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := map[string]any{}
	ui.addVansData(sess, data)
	ui.renderFragment(w, "vansResults", data)
}

func (ui *UI) render(w http.ResponseWriter, template string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, template, data); err != nil {
		ui.logger.Error("template render failed", "template", template, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (ui *UI) renderFragment(w http.ResponseWriter, component string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderComponent(&buf, component, data); err != nil {
		ui.logger.Error("fragment render failed", "component", component, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
