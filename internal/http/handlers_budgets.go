package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID string  `json:"category_id"`
	Amount     decimal `json:"amount"`
	Period     string  `json:"period"`
}

type budgetResponse struct {
	ID           string    `json:"id"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Amount       float64   `json:"amount"`
	Period       string    `json:"period"`
	Spent        float64   `json:"spent"`
	Remaining    float64   `json:"remaining"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	row, err := s.budgets.Create(r.Context(), who, core.BudgetInput{
		CategoryID: req.CategoryID,
		Amount:     string(req.Amount),
		Period:     core.BudgetPeriod(req.Period),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, budgetResponse{
		ID:           row.ID,
		CategoryID:   row.CategoryID,
		CategoryName: row.CategoryName,
		Amount:       row.Amount.Float64(),
		Period:       string(row.Period),
		Remaining:    row.Amount.Float64(),
		CreatedAt:    row.CreatedAt,
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	who, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized", nil)
		return
	}

	statuses, err := s.budgets.List(r.Context(), who)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, budgetResponse{
			ID:           st.ID,
			CategoryID:   st.CategoryID,
			CategoryName: st.CategoryName,
			Amount:       st.Amount.Float64(),
			Period:       string(st.Period),
			Spent:        st.Spent.Float64(),
			Remaining:    core.Money{Cents: st.Amount.Cents - st.Spent.Cents}.Float64(),
			CreatedAt:    st.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
