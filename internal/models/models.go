package models

import "time"

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Budget is a user's spending limit for one month, keyed by "YYYY-MM".
type Budget struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	MonthYear    string    `json:"month_year"`
	BudgetAmount float64   `json:"budget_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense represents a financial expense record.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session represents a user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
