package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hyunwookim/mailvet/internal/application"
	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	emails      driven.EmailStore
	services    driven.ServiceStore
	users       driven.UserStore
	credentials driven.CredentialStore
	classifySvc *application.ClassifyService
	evalSvc     *application.EvaluationService
	dirSvc      *application.DirectoryService
	oracle      *application.OracleProvider
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	emails driven.EmailStore,
	services driven.ServiceStore,
	users driven.UserStore,
	credentials driven.CredentialStore,
	classifySvc *application.ClassifyService,
	evalSvc *application.EvaluationService,
	dirSvc *application.DirectoryService,
	oracle *application.OracleProvider,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		emails:      emails,
		services:    services,
		users:       users,
		credentials: credentials,
		classifySvc: classifySvc,
		evalSvc:     evalSvc,
		dirSvc:      dirSvc,
		oracle:      oracle,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with request-id, logging, and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/emails/classify", h.ClassifyEmails)
	mux.HandleFunc("GET /api/v1/emails", h.ListEmails)
	mux.HandleFunc("GET /api/v1/services", h.ListServices)
	mux.HandleFunc("PATCH /api/v1/services/{id}", h.OverrideServiceGrade)
	mux.HandleFunc("POST /api/v1/services/{id}/evaluate", h.EvaluateService)
	mux.HandleFunc("GET /api/v1/users", h.ListUsers)
	mux.HandleFunc("POST /api/v1/users", h.CreateUser)
	mux.HandleFunc("GET /api/v1/users/{id}/services", h.ListUserServices)
	mux.HandleFunc("PUT /api/v1/credentials/openai", h.SetOpenAICredential)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)

	return wrapped
}

// ClassifyEmails runs a batch of email summaries through the classification
// pipeline and returns the per-email verdicts.
func (h *Handler) ClassifyEmails(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summaries := make([]driven.EmailSummary, 0, len(req.Emails))
	for _, e := range req.Emails {
		summaries = append(summaries, driven.EmailSummary{
			ID:      e.ID,
			Subject: e.Subject,
			Sender:  e.Sender,
		})
	}

	results, err := h.classifySvc.Classify(r.Context(), summaries)
	if err != nil {
		h.logger.Error("classification batch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ClassifyResponse{Results: make([]ClassificationResult, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, ClassificationResult{
			ID:             res.EmailID,
			Classification: string(res.Classification),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListEmails returns stored emails, newest first.
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	emails, err := h.emails.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list emails", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	total, err := h.emails.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count emails", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := EmailListResponse{Emails: make([]EmailResponse, 0, len(emails)), Total: total}
	for _, e := range emails {
		resp.Emails = append(resp.Emails, toEmailResponse(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListServices returns the service registry filtered by evaluation status
// and an optional name search.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	filter := driven.FilterAll
	switch status := r.URL.Query().Get("status"); status {
	case "", "ALL":
	case "PENDING":
		filter = driven.FilterPending
	case "COMPLETED":
		filter = driven.FilterCompleted
	default:
		writeError(w, http.StatusBadRequest, "invalid status: expected ALL, PENDING, or COMPLETED")
		return
	}

	services, err := h.services.List(r.Context(), filter, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		resp = append(resp, toServiceResponse(svc))
	}

	writeJSON(w, http.StatusOK, resp)
}

// OverrideServiceGrade records a manual grade decision on a service.
func (h *Handler) OverrideServiceGrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var req OverrideGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grade := model.RiskGrade(req.Grade)
	switch grade {
	case model.GradeA, model.GradeB, model.GradeC, model.GradeUnrated:
	default:
		writeError(w, http.StatusBadRequest, "invalid grade: expected A, B, C, or Unrated")
		return
	}

	svc, err := h.evalSvc.OverrideGrade(r.Context(), id, grade)
	if err != nil {
		if errors.Is(err, application.ErrServiceNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.logger.Error("failed to override grade", "service_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toServiceResponse(*svc))
}

// EvaluateService runs a privacy policy evaluation for a service and writes
// the outcome back onto it.
func (h *Handler) EvaluateService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PolicyText == "" {
		writeError(w, http.StatusBadRequest, "policy_text is required")
		return
	}

	svc, eval, err := h.evalSvc.EvaluateService(r.Context(), id, req.PolicyText)
	if err != nil {
		if errors.Is(err, application.ErrServiceNotFound) {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.logger.Error("failed to evaluate service", "service_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, EvaluationResponse{
		Service: toServiceResponse(*svc),
		Grade:   string(eval.Grade),
		Score:   eval.Score,
		Report:  eval.Report,
	})
}

// ListUsers returns registered users, newest first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user := model.User{
		Email:     req.Email,
		Nickname:  req.Nickname,
		CreatedAt: time.Now().UTC(),
	}

	id, err := h.users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, driven.ErrDuplicateUser) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("failed to create user", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user.ID = id
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// ListUserServices returns a user's linked services, optionally filtered by
// grade and reordered by risk.
func (h *Handler) ListUserServices(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	grade := model.RiskGrade(r.URL.Query().Get("grade"))
	switch grade {
	case model.GradeNone, model.GradeA, model.GradeB, model.GradeC, model.GradeUnrated:
	default:
		writeError(w, http.StatusBadRequest, "invalid grade: expected A, B, C, or Unrated")
		return
	}

	sortBy := r.URL.Query().Get("sort")
	switch sortBy {
	case "", application.SortLatest, application.SortRiskDesc, application.SortRiskAsc:
	default:
		writeError(w, http.StatusBadRequest, "invalid sort: expected latest, risk_desc, or risk_asc")
		return
	}

	linked, err := h.dirSvc.UserServices(r.Context(), id, grade, sortBy)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to list user services", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]LinkedServiceResponse, 0, len(linked))
	for _, ls := range linked {
		resp = append(resp, toLinkedServiceResponse(ls))
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetOpenAICredential stores a new OpenAI API key and swaps the oracle
// client so the key takes effect without a restart.
func (h *Handler) SetOpenAICredential(w http.ResponseWriter, r *http.Request) {
	var req SetCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.credentials.Set(r.Context(), "openai", req.APIKey); err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			writeError(w, http.StatusConflict, "credential encryption is not configured")
			return
		}
		h.logger.Error("failed to store credential", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.oracle.Swap(req.APIKey)
	h.logger.Info("openai credential updated")
	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or not a non-negative integer.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
