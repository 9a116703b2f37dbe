package handlers

import (
	"log"
	"net/http"
	"time"
)

// monthKey returns the "YYYY-MM" key for the current month.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User       string
	MonthYear  string
	MonthName  string
	Budget     float64
	Spent      float64
	Remaining  float64
	Forecast   float64
	Categories map[string]float64
}

// Dashboard renders the dashboard page with the current month's
// budget, total spend and per-category breakdown.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	now := time.Now()
	month := monthKey(now)

	budget, err := h.db.GetBudget(user.ID, month)
	if err != nil {
		log.Printf("GetBudget error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	spent, err := h.db.MonthTotal(user.ID, month)
	if err != nil {
		log.Printf("MonthTotal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	categories, err := h.db.CategoryTotals(user.ID, month)
	if err != nil {
		log.Printf("CategoryTotals error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, "dashboard.html", DashboardViewModel{
		User:       user.Name,
		MonthYear:  month,
		MonthName:  now.Format("January 2006"),
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget - spent,
		Forecast:   0, // no forecast model yet, mirrors the API field
		Categories: categories,
	})
}
