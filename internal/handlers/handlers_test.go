package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetwise/internal/config"
	"budgetwise/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// HandlersTestSuite exercises the HTTP surface against an in-memory
// database.
type HandlersTestSuite struct {
	suite.Suite
	db  *storage.DB
	h   *Handlers
	mux *http.ServeMux
}

// SetupTest runs before each test
func (suite *HandlersTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	cfg := &config.Config{
		SessionSecret: "test-secret",
		TemplateDir:   "../../web/templates",
	}
	suite.h = NewHandlers(db, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", suite.h.Index)
	mux.HandleFunc("POST /signup", suite.h.Signup)
	mux.HandleFunc("POST /login", suite.h.Login)
	mux.HandleFunc("GET /logout", suite.h.Logout)
	mux.Handle("GET /dashboard", suite.h.AuthMiddleware(http.HandlerFunc(suite.h.Dashboard)))
	mux.Handle("GET /api/get_dashboard_data", suite.h.APIAuthMiddleware(http.HandlerFunc(suite.h.DashboardData)))
	mux.Handle("POST /api/update_budget", suite.h.APIAuthMiddleware(http.HandlerFunc(suite.h.UpdateBudget)))
	mux.Handle("POST /api/add_expense", suite.h.APIAuthMiddleware(http.HandlerFunc(suite.h.AddExpense)))
	suite.mux = mux
}

// TearDownTest runs after each test
func (suite *HandlersTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *HandlersTestSuite) postJSON(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.mux.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.mux.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decodeAuthResponse(w *httptest.ResponseRecorder) authResponse {
	var resp authResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// signup registers a user and returns the session cookie.
func (suite *HandlersTestSuite) signup(name, email, password string) *http.Cookie {
	w := suite.postJSON("/signup", `{"name":"`+name+`","email":"`+email+`","password":"`+password+`"}`)
	require.Equal(suite.T(), http.StatusOK, w.Code, "signup failed: %s", w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	suite.T().Fatal("signup did not set a session cookie")
	return nil
}

func (suite *HandlersTestSuite) TestSignupSuccess() {
	w := suite.postJSON("/signup", `{"name":"Jane","email":"Jane@Example.com","password":"Str0ng!Pass"}`)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decodeAuthResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
	assert.Equal(suite.T(), "Account created!", resp.Message)
	assert.Equal(suite.T(), "/dashboard", resp.Redirect)

	cookies := w.Result().Cookies()
	require.NotEmpty(suite.T(), cookies, "signup should establish a session")
	assert.Equal(suite.T(), SessionCookieName, cookies[0].Name)
	assert.True(suite.T(), cookies[0].HttpOnly)
}

func (suite *HandlersTestSuite) TestSignupFormBody() {
	form := "name=Jane&email=Jane%40Example.com&password=Str0ng%21Pass"
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	suite.mux.ServeHTTP(w, req)

	require.Equal(suite.T(), http.StatusOK, w.Code, "form signup failed: %s", w.Body.String())
	resp := suite.decodeAuthResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
}

func (suite *HandlersTestSuite) TestSignupMissingFields() {
	w := suite.postJSON("/signup", `{"name":"","email":"jane@example.com","password":"Str0ng!Pass"}`)
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "All fields required", suite.decodeAuthResponse(w).Message)
}

func (suite *HandlersTestSuite) TestSignupWeakPassword() {
	w := suite.postJSON("/signup", `{"name":"Jane","email":"jane@example.com","password":"weakpass"}`)
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), suite.decodeAuthResponse(w).Message, "Password must be 8+ chars")

	// Nothing may be written on validation failure
	count, err := suite.db.UserCount()
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *HandlersTestSuite) TestSignupDuplicateEmail() {
	suite.signup("Jane", "A@x.com", "Str0ng!Pass")

	// Same email with different case
	w := suite.postJSON("/signup", `{"name":"Janet","email":"a@X.com","password":"0ther!Pass"}`)
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Email already exists", suite.decodeAuthResponse(w).Message)
}

func (suite *HandlersTestSuite) TestLoginAfterSignup() {
	suite.signup("Jane", "Jane@Example.com", "Str0ng!Pass")

	w := suite.postJSON("/login", `{"email":"jane@example.com","password":"Str0ng!Pass"}`)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	resp := suite.decodeAuthResponse(w)
	assert.Equal(suite.T(), "success", resp.Status)
	assert.Equal(suite.T(), "Login successful!", resp.Message)
	assert.Equal(suite.T(), "/dashboard", resp.Redirect)
}

func (suite *HandlersTestSuite) TestLoginWrongPassword() {
	suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	w := suite.postJSON("/login", `{"email":"jane@example.com","password":"wrong"}`)
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "Invalid credentials", suite.decodeAuthResponse(w).Message)
}

func (suite *HandlersTestSuite) TestLoginUnknownEmailSameError() {
	suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	wrongPass := suite.postJSON("/login", `{"email":"jane@example.com","password":"wrong"}`)
	unknown := suite.postJSON("/login", `{"email":"nobody@example.com","password":"Str0ng!Pass"}`)

	assert.Equal(suite.T(), wrongPass.Code, unknown.Code)
	assert.Equal(suite.T(), wrongPass.Body.String(), unknown.Body.String(),
		"login failures must not reveal whether the email exists")
}

func (suite *HandlersTestSuite) TestLoginMissingFields() {
	w := suite.postJSON("/login", `{"email":"","password":""}`)
	require.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "Email and password required", suite.decodeAuthResponse(w).Message)
}

func (suite *HandlersTestSuite) TestDashboardRequiresSession() {
	w := suite.get("/dashboard")
	require.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestAPIRequiresSession() {
	w := suite.get("/api/get_dashboard_data")
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.JSONEq(suite.T(), `{"error":"Unauthorized"}`, w.Body.String())

	w = suite.postJSON("/api/add_expense", `{"category":"food","amount":1,"date":"2026-08-01"}`)
	require.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestDashboardWithSession() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	w := suite.get("/dashboard", cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Welcome")
	assert.Contains(suite.T(), w.Body.String(), "Jane")
}

func (suite *HandlersTestSuite) TestForgedCookieRejected() {
	suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	forged := &http.Cookie{Name: SessionCookieName, Value: strings.Repeat("ab", 32)}
	w := suite.get("/api/get_dashboard_data", forged)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestLogoutTerminatesSession() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	// Session works before logout
	w := suite.get("/api/get_dashboard_data", cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.get("/logout", cookie)
	require.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/", w.Header().Get("Location"))

	// The old cookie is dead immediately
	w = suite.get("/api/get_dashboard_data", cookie)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestIndexRedirectsWhenLoggedIn() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	w := suite.get("/", cookie)
	require.Equal(suite.T(), http.StatusFound, w.Code)
	assert.Equal(suite.T(), "/dashboard", w.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestBudgetAndExpenseFlow() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")
	month := monthKey(time.Now())

	w := suite.postJSON("/api/update_budget", `{"month_year":"`+month+`","amount":500}`, cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code, "update_budget failed: %s", w.Body.String())
	assert.JSONEq(suite.T(), `{"success":true,"amount":500}`, w.Body.String())

	w = suite.postJSON("/api/add_expense",
		`{"category":"food","amount":12.5,"date":"`+month+`-10","description":"Lunch"}`, cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code, "add_expense failed: %s", w.Body.String())

	w = suite.postJSON("/api/add_expense",
		`{"category":"transport","amount":"7.5","date":"`+month+`-11"}`, cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code, "string amount should be accepted")

	w = suite.get("/api/get_dashboard_data", cookie)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var data dashboardData
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(suite.T(), 500.0, data.Budget)
	assert.Equal(suite.T(), 20.0, data.Expenses)
	assert.Equal(suite.T(), map[string]float64{"food": 12.5, "transport": 7.5}, data.Categories)
}

func (suite *HandlersTestSuite) TestUpdateBudgetValidation() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	w := suite.postJSON("/api/update_budget", `{"month_year":"August","amount":500}`, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.postJSON("/api/update_budget", `{"month_year":"2026-08","amount":"abc"}`, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestAddExpenseValidation() {
	cookie := suite.signup("Jane", "jane@example.com", "Str0ng!Pass")

	w := suite.postJSON("/api/add_expense", `{"category":"","amount":1,"date":"2026-08-01"}`, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.postJSON("/api/add_expense", `{"category":"food","amount":1,"date":"01/08/2026"}`, cookie)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestHandlersSuite runs the handlers test suite
func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
