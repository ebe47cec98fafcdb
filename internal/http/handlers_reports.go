package http

import (
	"net/http"

	"fintrack/internal/core"
)

type categorySpendingResponse struct {
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

type spendingReportResponse struct {
	StartDate  core.Date                  `json:"start_date"`
	EndDate    core.Date                  `json:"end_date"`
	ByCategory []categorySpendingResponse `json:"by_category"`
}

func (s *Server) handleSpendingReport(w http.ResponseWriter, r *http.Request) {
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

	report, err := s.reports.SpendingByCategory(r.Context(), who, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := spendingReportResponse{
		StartDate:  report.Start,
		EndDate:    report.End,
		ByCategory: make([]categorySpendingResponse, 0, len(report.ByCategory)),
	}
	for _, cs := range report.ByCategory {
		out.ByCategory = append(out.ByCategory, categorySpendingResponse{
			CategoryName: cs.CategoryName,
			Total:        cs.Total.Float64(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
