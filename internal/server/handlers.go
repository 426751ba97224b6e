package server

import (
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expensebot/internal/model"
	"expensebot/internal/service"
	"expensebot/web"
)

const defaultExpenseLimit = 20

// twiML is the minimal Twilio messaging response body.
type twiML struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// handleWebhook answers a Twilio-style form webhook. The sender's number is
// the user id, so WhatsApp users need no registration step.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	from := strings.TrimSpace(r.PostFormValue("From"))
	body := r.PostFormValue("Body")
	if from == "" {
		http.Error(w, "missing From", http.StatusBadRequest)
		return
	}

	resp := s.engine.HandleMessage(r.Context(), from, body)

	w.Header().Set("Content-Type", "application/xml")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(twiML{Message: resp.Text()}); err != nil {
		slog.Error("Failed to encode TwiML", "error", err)
	}
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// handleChat runs one dialogue turn for the demo page and returns the full
// structured response so the page can style each reply kind.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	resp := s.engine.HandleMessage(r.Context(), req.UserID, req.Message)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		respondError(w, http.StatusBadRequest, "user is required")
		return
	}

	limit := defaultExpenseLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	expenses, err := s.store.ListExpenses(r.Context(), user, service.ExpenseFilter{Limit: limit})
	if err != nil {
		slog.Error("Failed to list expenses", "user_id", user, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"count":    len(expenses),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		respondError(w, http.StatusBadRequest, "user is required")
		return
	}

	period := model.PeriodWeekly
	switch r.URL.Query().Get("period") {
	case "", "weekly":
	case "monthly":
		period = model.PeriodMonthly
	default:
		respondError(w, http.StatusBadRequest, "period must be weekly or monthly")
		return
	}

	summary, err := s.summarizer.RunSummary(r.Context(), user, period)
	if err != nil {
		slog.Error("Failed to build summary",
			"user_id", user,
			"period", string(period),
			"error", err)
		respondError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.StaticFS, "static/index.html")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
