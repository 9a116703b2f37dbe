package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// dashboardData is the JSON body served to the dashboard frontend.
type dashboardData struct {
	Budget     float64            `json:"budget"`
	Expenses   float64            `json:"expenses"`
	Forecast   float64            `json:"forecast"`
	Categories map[string]float64 `json:"categories"`
}

// updateBudgetRequest is the normalized update_budget payload. Amount
// is a json.Number so both `12.5` and `"12.5"` are accepted.
type updateBudgetRequest struct {
	MonthYear string      `json:"month_year"`
	Amount    json.Number `json:"amount"`
}

// addExpenseRequest is the normalized add_expense payload.
type addExpenseRequest struct {
	Category    string      `json:"category"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func apiError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// DashboardData serves the current month's aggregates as JSON.
func (h *Handlers) DashboardData(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	month := monthKey(time.Now())

	budget, err := h.db.GetBudget(user.ID, month)
	if err != nil {
		log.Printf("GetBudget error: %v", err)
		apiError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	spent, err := h.db.MonthTotal(user.ID, month)
	if err != nil {
		log.Printf("MonthTotal error: %v", err)
		apiError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	categories, err := h.db.CategoryTotals(user.ID, month)
	if err != nil {
		log.Printf("CategoryTotals error: %v", err)
		apiError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, dashboardData{
		Budget:     budget,
		Expenses:   spent,
		Forecast:   0,
		Categories: categories,
	})
}

// UpdateBudget upserts the budget for one month.
func (h *Handlers) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req updateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := time.Parse("2006-01", req.MonthYear); err != nil {
		apiError(w, http.StatusBadRequest, "month_year must be YYYY-MM")
		return
	}

	amount, err := req.Amount.Float64()
	if err != nil {
		apiError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	if err := h.db.SetBudget(user.ID, req.MonthYear, amount); err != nil {
		log.Printf("SetBudget error: %v", err)
		apiError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "amount": amount})
}

// AddExpense records one expense for the logged-in user.
func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Category == "" {
		apiError(w, http.StatusBadRequest, "category is required")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		apiError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	amount, err := req.Amount.Float64()
	if err != nil {
		apiError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	if err := h.db.CreateExpense(user.ID, req.Category, amount, req.Date, req.Description); err != nil {
		log.Printf("CreateExpense error: %v", err)
		apiError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
