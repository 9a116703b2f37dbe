package storage

import (
	"database/sql"
	"strings"
	"time"

	"budgetwise/internal/auth"
	"budgetwise/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			month_year TEXT NOT NULL,
			budget_amount REAL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(user_id, month_year)
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			category TEXT NOT NULL,
			amount REAL NOT NULL,
			date TEXT NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser inserts a new user row. A violation of the unique email
// constraint is surfaced as auth.ErrDuplicateEmail rather than a raw
// driver error.
func (db *DB) CreateUser(name, email, username, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (name, email, username, password_hash) VALUES (?, ?, ?, ?)",
		name, email, username, passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, username, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. The email is expected to
// be lower-cased by the caller.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, username, password_hash, created_at FROM users WHERE email = ?",
		email,
	)
	return scanUser(row)
}

// GetUserByCredentials retrieves the user whose email and password
// digest both match. Returns sql.ErrNoRows on any miss; unknown
// emails and wrong passwords are indistinguishable here.
func (db *DB) GetUserByCredentials(email, passwordHash string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, username, password_hash, created_at FROM users WHERE email = ? AND password_hash = ?",
		email, passwordHash,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateSession creates a new session for a user. Callers pass the
// HMAC of the client token, never the raw cookie value.
func (db *DB) CreateSession(tokenHash string, userID int64, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		tokenHash, userID, expiresAt,
	)
	return err
}

// ValidateSession checks if a session token is valid and returns the
// associated user.
func (db *DB) ValidateSession(tokenHash string) (*models.User, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.name, u.email, u.username, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?
	`, tokenHash, time.Now())
	return scanUser(row)
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(tokenHash string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", tokenHash)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	return err
}

// SetBudget upserts the budget for a user and month. A second write
// for the same (user, month) overwrites the first.
func (db *DB) SetBudget(userID int64, monthYear string, amount float64) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO budgets (user_id, month_year, budget_amount) VALUES (?, ?, ?)",
		userID, monthYear, amount,
	)
	return err
}

// GetBudget returns the budget amount for a user and month, or zero
// when none has been set.
func (db *DB) GetBudget(userID int64, monthYear string) (float64, error) {
	var amount float64
	err := db.conn.QueryRow(
		"SELECT budget_amount FROM budgets WHERE user_id = ? AND month_year = ?",
		userID, monthYear,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return amount, err
}

// CreateExpense inserts a new expense for a user. The date is a plain
// "YYYY-MM-DD" string so month aggregation can match on its prefix.
func (db *DB) CreateExpense(userID int64, category string, amount float64, date, description string) error {
	_, err := db.conn.Exec(
		"INSERT INTO expenses (user_id, category, amount, date, description) VALUES (?, ?, ?, ?, ?)",
		userID, category, amount, date, description,
	)
	return err
}

// MonthTotal returns the sum of a user's expenses in the given
// "YYYY-MM" month.
func (db *DB) MonthTotal(userID int64, monthYear string) (float64, error) {
	var total float64
	err := db.conn.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ? AND date LIKE ?",
		userID, monthYear+"-%",
	).Scan(&total)
	return total, err
}

// CategoryTotals returns a user's per-category expense totals for the
// given "YYYY-MM" month.
func (db *DB) CategoryTotals(userID int64, monthYear string) (map[string]float64, error) {
	rows, err := db.conn.Query(
		"SELECT category, SUM(amount) FROM expenses WHERE user_id = ? AND date LIKE ? GROUP BY category",
		userID, monthYear+"-%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals[category] = total
	}

	return totals, rows.Err()
}
