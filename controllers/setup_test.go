package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/config"
	"github.com/7FIl/freepass-2026/database"
	"github.com/7FIl/freepass-2026/kds"
	"github.com/7FIl/freepass-2026/router"
	"github.com/7FIl/freepass-2026/services"
	"github.com/7FIl/freepass-2026/utils"
)

const (
	adminEmail    = "admin@ub.ac.id"
	adminPassword = "Admin12345"
)

func init() {
	gin.SetMode(gin.TestMode)
	services.PasswordCost = bcrypt.MinCost
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	hub    *kds.Hub
}

type envelope struct {
	Status     bool              `json:"status"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *utils.Pagination `json:"pagination"`
	Errors     []utils.FieldError `json:"errors"`
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := config.InitDB(config.Database{Driver: "sqlite", DSN: "file::memory:"}, log)
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedDomains(db, log))
	require.NoError(t, database.SeedAdmin(db, database.AdminAccount{Email: adminEmail, Password: adminPassword}, log))

	mem := cache.NewMemoryCache()
	hub := kds.NewHub(log)
	tokens := utils.NewTokenManager("controller-test-secret", time.Hour)
	domains := services.NewEmailDomainService(db, mem, log)

	r := router.SetupRouter(router.Deps{
		DB:       db,
		Log:      log,
		Tokens:   tokens,
		Auth:     services.NewAuthService(db, tokens, domains, mem, log),
		Canteens: services.NewCanteenService(db, mem, log),
		Orders:   services.NewOrderService(db, mem, nil, hub, log),
		Admin:    services.NewAdminService(db, domains, mem, log),
		Domains:  domains,
		Hub:      hub,
		Server:   config.Server{CORSOrigins: []string{"*"}},
		Limits:   config.Limits{AuthPerMinute: 1000},
	})
	return &testServer{t: t, db: db, router: r, hub: hub}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, env.Message)
	var res struct {
		Token string `json:"token"`
	}
	decode(s.t, env, &res)
	return res.Token
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@student.ub.ac.id",
		"password": "Rahasia123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, env.Message)
	var res struct {
		Token string `json:"token"`
	}
	decode(s.t, env, &res)
	return res.Token
}

// owner registers a user and promotes them to canteen owner through the
// admin API, then logs in again to get a token carrying the new role.
func (s *testServer) owner(username string) string {
	s.t.Helper()
	admin := s.login(adminEmail, adminPassword)
	w, env := s.do(http.MethodPost, "/api/admin/users", admin, gin.H{
		"username": username,
		"email":    username + "@student.ub.ac.id",
		"password": "Rahasia123",
		"role":     "CANTEEN_OWNER",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, env.Message)
	return s.login(username+"@student.ub.ac.id", "Rahasia123")
}

type idOnly struct {
	ID string `json:"id"`
}

func (s *testServer) canteenWithItem(ownerToken, price string, stock int) (canteenID, itemID string) {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/canteens", ownerToken, gin.H{"name": "Kantin Pusat"})
	require.Equal(s.t, http.StatusCreated, w.Code, env.Message)
	var canteen idOnly
	decode(s.t, env, &canteen)

	w, env = s.do(http.MethodPost, "/api/canteens/"+canteen.ID+"/menu", ownerToken, gin.H{
		"name":        "Nasi Goreng",
		"description": "Nasi goreng kampung pedas",
		"price":       price,
		"stock":       stock,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, env.Message)
	var item idOnly
	decode(s.t, env, &item)
	return canteen.ID, item.ID
}
