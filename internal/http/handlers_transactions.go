package http

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// decimal accepts a JSON number or a quoted decimal string; either way the
// raw text is validated and parsed downstream, never a float.
type decimal string

func (d *decimal) UnmarshalJSON(b []byte) error {
	*d = decimal(strings.Trim(string(b), `"`))
	return nil
}

type transactionRequest struct {
	Amount      decimal `json:"amount"`
	Date        string  `json:"date"`
	CategoryID  string  `json:"category_id"`
	Description string  `json:"description"`
	IsExpense   *bool   `json:"is_expense"`
}

func (req transactionRequest) input() core.TransactionInput {
	return core.TransactionInput{
		Amount:      string(req.Amount),
		Date:        req.Date,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		IsExpense:   req.IsExpense,
	}
}

type transactionResponse struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Amount       float64   `json:"amount"`
	Date         core.Date `json:"date"`
	Description  string    `json:"description"`
	IsExpense    bool      `json:"is_expense"`
	CreatedAt    time.Time `json:"created_at"`
}

func toTransactionResponse(row storage.TransactionRow) transactionResponse {
	return transactionResponse{
		ID:           row.ID,
		CategoryID:   row.CategoryID,
		CategoryName: row.CategoryName,
		Amount:       row.Amount.Float64(),
		Date:         row.Date,
		Description:  row.Description,
		IsExpense:    row.IsExpense,
		CreatedAt:    row.CreatedAt,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	row, err := s.transactions.Create(r.Context(), who, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(row))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	start, ok := dateQuery(w, r, "start_date")
	if !ok {
		return
	}
	end, ok := dateQuery(w, r, "end_date")
	if !ok {
		return
	}

	rows, err := s.transactions.List(r.Context(), who, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransactionResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	row, err := s.transactions.Get(r.Context(), who, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(row))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	row, err := s.transactions.Update(r.Context(), who, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(row))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	if err := s.transactions.Delete(r.Context(), who, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dateQuery parses an optional YYYY-MM-DD query parameter. A malformed value
// is a validation error, not a silent default.
func dateQuery(w http.ResponseWriter, r *http.Request, name string) (*core.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeValidation,
			name+" must be in YYYY-MM-DD format", nil)
		return nil, false
	}
	return &d, true
}
