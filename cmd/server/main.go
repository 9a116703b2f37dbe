package main

import (
	"log"
	"net/http"

	"budgetwise/internal/config"
	"budgetwise/internal/handlers"
	"budgetwise/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.CleanExpiredSessions(); err != nil {
		log.Printf("Failed to clean expired sessions: %v", err)
	}

	h := handlers.NewHandlers(db, cfg)
	mux := setupRouter(h, cfg.StaticDir)

	addr := ":" + cfg.Port
	log.Printf("BudgetWise listening on %s", addr)
	if err := http.ListenAndServe(addr, handlers.LoggingMiddleware(mux)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.Handle("GET /dashboard", h.AuthMiddleware(http.HandlerFunc(h.Dashboard)))

	mux.Handle("GET /api/get_dashboard_data", h.APIAuthMiddleware(http.HandlerFunc(h.DashboardData)))
	mux.Handle("POST /api/update_budget", h.APIAuthMiddleware(http.HandlerFunc(h.UpdateBudget)))
	mux.Handle("POST /api/add_expense", h.APIAuthMiddleware(http.HandlerFunc(h.AddExpense)))

	return mux
}
