package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hyunwookim/mailvet/internal/domain/model"
	"github.com/hyunwookim/mailvet/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ClassifyRequest is the JSON body for the classify endpoint.
type ClassifyRequest struct {
	Emails []EmailSummaryRequest `json:"emails"`
}

// EmailSummaryRequest is one email in a classification batch.
type EmailSummaryRequest struct {
	ID      int64  `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
}

// ClassifyResponse is the JSON representation of a classification batch outcome.
type ClassifyResponse struct {
	Results []ClassificationResult `json:"results"`
}

// ClassificationResult is one per-email verdict.
type ClassificationResult struct {
	ID             int64  `json:"id"`
	Classification string `json:"classification"`
}

// EmailResponse is the JSON representation of a stored email.
type EmailResponse struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	Provider       string `json:"provider"`
	MessageID      string `json:"message_id,omitempty"`
	Sender         string `json:"sender"`
	Subject        string `json:"subject"`
	Snippet        string `json:"snippet,omitempty"`
	ReceivedAt     string `json:"received_at,omitempty"`
	Classification string `json:"classification"`
}

// EmailListResponse is the JSON representation of an email listing page.
type EmailListResponse struct {
	Emails []EmailResponse `json:"emails"`
	Total  int             `json:"total"`
}

// ServiceResponse is the JSON representation of a registered service.
type ServiceResponse struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Domain         string   `json:"domain,omitempty"`
	Grade          string   `json:"grade,omitempty"`
	SecurityScore  *float64 `json:"security_score,omitempty"`
	SecurityReport string   `json:"security_report,omitempty"`
	EvaluatedAt    string   `json:"evaluated_at,omitempty"`
	ReviewPending  bool     `json:"review_pending"`
	CreatedAt      string   `json:"created_at"`
}

// OverrideGradeRequest is the JSON body for the manual grade endpoint.
type OverrideGradeRequest struct {
	Grade string `json:"grade"`
}

// EvaluateRequest is the JSON body for the policy evaluation endpoint.
type EvaluateRequest struct {
	PolicyText string `json:"policy_text"`
}

// EvaluationResponse is the JSON representation of an evaluation outcome.
type EvaluationResponse struct {
	Service ServiceResponse `json:"service"`
	Grade   string          `json:"grade"`
	Score   float64         `json:"score"`
	Report  string          `json:"report"`
}

// UserResponse is the JSON representation of a registered user.
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CreateUserRequest is the JSON body for the user creation endpoint.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// LinkedServiceResponse is a user's subscription joined with its service.
type LinkedServiceResponse struct {
	Service          ServiceResponse `json:"service"`
	SubscriptionDate string          `json:"subscription_date,omitempty"`
	Status           string          `json:"status"`
}

// SetCredentialRequest is the JSON body for the credential update endpoint.
type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toEmailResponse converts a domain Email to its JSON representation.
func toEmailResponse(e model.Email) EmailResponse {
	resp := EmailResponse{
		ID:             e.ID,
		UserID:         e.UserID,
		Provider:       e.Provider,
		MessageID:      e.MessageID,
		Sender:         e.Sender,
		Subject:        e.Subject,
		Snippet:        e.Snippet,
		Classification: string(e.Classification),
	}
	if !e.ReceivedAt.IsZero() {
		resp.ReceivedAt = e.ReceivedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toServiceResponse converts a domain Service to its JSON representation.
func toServiceResponse(svc model.Service) ServiceResponse {
	resp := ServiceResponse{
		ID:             svc.ID,
		Name:           svc.Name,
		Domain:         svc.Domain,
		Grade:          string(svc.Grade),
		SecurityScore:  svc.SecurityScore,
		SecurityReport: svc.SecurityReport,
		ReviewPending:  svc.ReviewPending,
		CreatedAt:      svc.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !svc.EvaluatedAt.IsZero() {
		resp.EvaluatedAt = svc.EvaluatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toUserResponse converts a domain User to its JSON representation.
func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toLinkedServiceResponse converts a joined link row to its JSON representation.
func toLinkedServiceResponse(ls driven.LinkedService) LinkedServiceResponse {
	resp := LinkedServiceResponse{
		Service: toServiceResponse(ls.Service),
		Status:  string(ls.Link.Status),
	}
	if !ls.Link.SubscriptionDate.IsZero() {
		resp.SubscriptionDate = ls.Link.SubscriptionDate.UTC().Format("2006-01-02")
	}
	return resp
}
