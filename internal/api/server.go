package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ChurchCal/internal/auth"
	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/export"
	"github.com/Kerhoff/ChurchCal/internal/importer"
	"github.com/Kerhoff/ChurchCal/internal/models"
	"github.com/Kerhoff/ChurchCal/internal/repository"
	"github.com/Kerhoff/ChurchCal/internal/service"
	"github.com/Kerhoff/ChurchCal/internal/store"
)

// CalendarName is the display name of exported calendars.
const CalendarName = "나주교회 일정"

// maxUploadSize limits workbook uploads.
const maxUploadSize = 10 << 20

// Server provides the JSON API, file exports and metrics.
type Server struct {
	svc     *service.Service
	auth    *auth.Authenticator
	logger  *logrus.Logger
	mux     *http.ServeMux
	origins []string
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, authenticator *auth.Authenticator, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, auth: authenticator, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// AllowOrigins enables credentialed cross-origin requests from origins,
// for a frontend hosted elsewhere.
func (s *Server) AllowOrigins(origins []string) {
	s.origins = origins
}

// Handler returns the http.Handler that can be passed to http.Server.
// Requests are counted, then checked for a session, then routed.
func (s *Server) Handler() http.Handler {
	h := s.instrument(s.auth.Middleware(s.mux))
	if len(s.origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Session
	s.mux.HandleFunc("POST /api/auth", s.handleLogin)
	s.mux.HandleFunc("GET /api/auth", s.handleAuthStatus)
	s.mux.HandleFunc("DELETE /api/auth", s.handleLogout)

	// API – Events
	s.mux.HandleFunc("GET /api/events", s.handleGetEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/occurrences", s.handleGetOccurrences)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("DELETE /api/events/month/{year}/{month}", s.handleDeleteMonth)

	// API – Categories & filter
	s.mux.HandleFunc("GET /api/categories", s.handleGetCategories)
	s.mux.HandleFunc("GET /api/filter", s.handleGetFilter)
	s.mux.HandleFunc("PUT /api/filter", s.handleSetFilter)
	s.mux.HandleFunc("POST /api/filter/{category}/toggle", s.handleToggleCategory)

	// API – Spreadsheet import
	s.mux.HandleFunc("POST /api/import/preview", s.handleImportPreview)
	s.mux.HandleFunc("POST /api/import/commit", s.handleImportCommit)

	// API – Export
	s.mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /api/export/ics", s.handleExportICS)

	// Operations
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.svc.Metrics().Registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// queryDate parses a YYYY-MM-DD query parameter. present is false when the
// parameter is absent.
func queryDate(r *http.Request, key string) (d datecodec.CalendarDate, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return datecodec.CalendarDate{}, false, nil
	}
	d, err = datecodec.Unbounded.FromPersisted(raw)
	return d, true, err
}

func parseMonth(yearRaw, monthRaw string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearRaw)
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("invalid year %q", yearRaw)
	}
	month, err := strconv.Atoi(monthRaw)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", monthRaw)
	}
	return year, time.Month(month), nil
}

// writeStoreError maps store and repository errors to HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrDuplicateRejected):
		s.respondError(w, http.StatusConflict, store.ErrDuplicateRejected.Error())
	case errors.Is(err, store.ErrInvalidEvent):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "event not found")
	default:
		s.logger.WithError(err).Errorf("failed to %s", action)
		s.respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// ---------------------------------------------------------------------------
// Instrumentation
// ---------------------------------------------------------------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.svc.Metrics().HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok, _ := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, "요청 처리 중 오류가 발생했습니다.")
		return
	}
	if req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "비밀번호를 입력해주세요.")
		return
	}

	ok, err := s.auth.CheckPassword(req.Password)
	if err != nil {
		s.logger.WithError(err).Error("Login attempted without a configured password")
		s.respondError(w, http.StatusInternalServerError, "서버 설정 오류")
		return
	}
	if !ok {
		s.logger.WithField("remote", r.RemoteAddr).Warn("Rejected login")
		s.respondError(w, http.StatusUnauthorized, "비밀번호가 일치하지 않습니다.")
		return
	}

	if err := s.auth.Login(w); err != nil {
		s.logger.WithError(err).Error("failed to issue session")
		s.respondError(w, http.StatusInternalServerError, "요청 처리 중 오류가 발생했습니다.")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"authenticated": s.auth.Authenticated(r)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(w)
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var (
		events []*models.Event
		err    error
	)

	date, hasDate, dateErr := queryDate(r, "date")
	from, hasFrom, fromErr := queryDate(r, "from")
	to, hasTo, toErr := queryDate(r, "to")
	if err := errors.Join(dateErr, fromErr, toErr); err != nil {
		s.respondError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	switch {
	case hasDate:
		events, err = s.svc.EventsByDate(ctx, date)
	case q.Get("year") != "" || q.Get("month") != "":
		year, month, perr := parseMonth(q.Get("year"), q.Get("month"))
		if perr != nil {
			s.respondError(w, http.StatusBadRequest, perr.Error())
			return
		}
		events, err = s.svc.EventsByMonth(ctx, year, month)
	case q.Get("category") != "":
		c := models.Category(q.Get("category"))
		if !c.Valid() {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", c))
			return
		}
		events, err = s.svc.EventsByCategory(ctx, c)
	case hasFrom || hasTo:
		if !hasFrom || !hasTo {
			s.respondError(w, http.StatusBadRequest, "from and to are both required")
			return
		}
		if to.Before(from) {
			s.respondError(w, http.StatusBadRequest, "to must not be before from")
			return
		}
		events, err = s.svc.EventsByDateRange(ctx, from, to)
	default:
		events, err = s.svc.AllEvents(ctx)
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to get events")
		s.respondError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}

	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft models.DraftEvent
	if ok, msg := s.decodeJSON(r, &draft); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.svc.Store.AddEvent(r.Context(), draft)
	if err != nil {
		s.writeStoreError(w, err, "create event")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if e, ok := s.svc.Store.Get(id); ok {
		s.respondJSON(w, http.StatusOK, e)
		return
	}

	e, err := s.svc.Events.GetByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "get event")
		return
	}
	s.respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch models.EventPatch
	if ok, msg := s.decodeJSON(r, &patch); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.Store.UpdateEvent(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeStoreError(w, err, "update event")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, err, "delete event")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteMonth(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseMonth(r.PathValue("year"), r.PathValue("month"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.svc.Store.DeleteEventsForMonth(r.Context(), year, month)
	if err != nil {
		s.writeStoreError(w, err, "delete events")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// handleGetOccurrences expands recurring events. Without from/to it covers
// the current month.
func (s *Server) handleGetOccurrences(w http.ResponseWriter, r *http.Request) {
	from, hasFrom, fromErr := queryDate(r, "from")
	to, hasTo, toErr := queryDate(r, "to")
	if err := errors.Join(fromErr, toErr); err != nil {
		s.respondError(w, http.StatusBadRequest, "dates must be YYYY-MM-DD")
		return
	}

	today := s.svc.Today()
	if !hasFrom {
		from = today.FirstOfMonth()
	}
	if !hasTo {
		to = from.LastOfMonth()
	}
	if to.Before(from) {
		s.respondError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	if to.Time(time.UTC).Sub(from.Time(time.UTC)) > 366*24*time.Hour {
		s.respondError(w, http.StatusBadRequest, "range must not exceed one year")
		return
	}

	occ := s.svc.Occurrences(from, to)
	if occ == nil {
		occ = []service.Occurrence{}
	}
	s.respondJSON(w, http.StatusOK, occ)
}

// ---------------------------------------------------------------------------
// Categories & filter
// ---------------------------------------------------------------------------

type categoryResponse struct {
	models.CategoryInfo
	Active bool `json:"active"`
}

type filterRequest struct {
	Active []models.Category `json:"active"`
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	active := make(map[models.Category]bool)
	for _, c := range s.svc.Store.ActiveCategories() {
		active[c] = true
	}

	infos := models.Categories()
	out := make([]categoryResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, categoryResponse{CategoryInfo: info, Active: active[info.Key]})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, filterRequest{Active: s.svc.Store.ActiveCategories()})
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	for _, c := range req.Active {
		if !c.Valid() {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", c))
			return
		}
	}

	s.svc.Store.SetActiveCategories(req.Active)
	s.respondJSON(w, http.StatusOK, filterRequest{Active: s.svc.Store.ActiveCategories()})
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	c := models.Category(r.PathValue("category"))
	if !c.Valid() {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown category %q", c))
		return
	}

	active := s.svc.Store.ToggleCategory(c)
	s.respondJSON(w, http.StatusOK, map[string]any{"category": c, "active": active})
}

// ---------------------------------------------------------------------------
// Spreadsheet import
// ---------------------------------------------------------------------------

type commitRequest struct {
	Events []models.DraftEvent `json:"events"`
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, service.MsgUnreadable)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	preview, err := s.svc.PreviewImport(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, importer.ErrNotExcel):
		s.respondError(w, http.StatusBadRequest, service.ImportMessage(err))
		return
	case err != nil:
		s.respondError(w, http.StatusUnprocessableEntity, service.ImportMessage(err))
		return
	}

	s.respondJSON(w, http.StatusOK, preview)
}

func (s *Server) handleImportCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := s.svc.CommitImport(r.Context(), req.Events)
	switch {
	case errors.Is(err, service.ErrNothingSelected):
		s.respondError(w, http.StatusBadRequest, service.ImportMessage(err))
		return
	case err != nil && (result == nil || len(result.Imported) == 0):
		s.logger.WithError(err).Error("failed to commit import")
		s.respondError(w, http.StatusInternalServerError, service.ImportMessage(err))
		return
	case err != nil:
		s.logger.WithError(err).Warn("Import committed with failures")
	}

	s.respondJSON(w, http.StatusOK, result)
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", export.DefaultCSVFilename, url.PathEscape(filename)))
}

// handleExportCSV downloads the events of the active categories, optionally
// limited to year+month.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var events []models.Event
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month, err := parseMonth(q.Get("year"), q.Get("month"))
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		events = s.svc.Store.EventsForMonth(year, month)
	} else {
		events = s.svc.Store.FilteredEvents()
	}

	attachment(w, "text/csv; charset=utf-8", export.CSVFilename(events))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(export.CSV(events))); err != nil {
		s.logger.WithError(err).Warn("failed to write CSV export")
	}
}

// handleExportICS serves every event as a subscribable calendar.
func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	body := export.ICS(CalendarName, s.svc.Store.Events(), s.svc.Location())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", export.ICSFilename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.WithError(err).Warn("failed to write ICS export")
	}
}
