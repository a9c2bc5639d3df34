package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := setupServer(t)
	user := s.register("budi")
	owner := s.owner("pak_kantin")

	for _, token := range []string{user, owner} {
		w, env := s.do(http.MethodGet, "/api/admin/users", token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, env.Status)
	}
}

func TestAdminUsers(t *testing.T) {
	s := setupServer(t)
	admin := s.login(adminEmail, adminPassword)
	s.register("budi")
	s.owner("pak_kantin")

	w, env := s.do(http.MethodGet, "/api/admin/users?role=USER", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var users []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decode(t, env, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "budi", users[0].Username)

	w, env = s.do(http.MethodGet, "/api/admin/canteen-owners", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var owners []idOnly
	decode(t, env, &owners)
	assert.Len(t, owners, 1)

	w, _ = s.do(http.MethodGet, "/api/admin/users?role=ROOT", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/admin/users/"+users[0].ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/admin/users/"+users[0].ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminStats(t *testing.T) {
	s := setupServer(t)
	admin := s.login(adminEmail, adminPassword)
	owner := s.owner("pak_kantin")
	canteenID, itemID := s.canteenWithItem(owner, "10.99", 5)
	user := s.register("budi")
	order := s.placeOrder(user, canteenID, itemID, 2)
	s.do(http.MethodPost, "/api/orders/"+order.ID+"/payment", user, gin.H{"amount": "21.98"})

	w, env := s.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var stats struct {
		TotalUsers    int64  `json:"totalUsers"`
		TotalCanteens int64  `json:"totalCanteens"`
		TotalOrders   int64  `json:"totalOrders"`
		TotalRevenue  string `json:"totalRevenue"`
	}
	decode(t, env, &stats)
	assert.Equal(t, int64(1), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalCanteens)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, "21.98", stats.TotalRevenue)
}

func TestAllowedDomains(t *testing.T) {
	s := setupServer(t)
	admin := s.login(adminEmail, adminPassword)

	w, env := s.do(http.MethodPost, "/api/admin/allowed-domains", admin, gin.H{"domain": "Example.org"})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var domain struct {
		ID     string `json:"id"`
		Domain string `json:"domain"`
	}
	decode(t, env, &domain)
	assert.Equal(t, "example.org", domain.Domain)

	w, _ = s.do(http.MethodPost, "/api/admin/allowed-domains", admin, gin.H{"domain": "example.org"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "siti",
		"email":    "siti@example.org",
		"password": "Rahasia123",
	})
	assert.Equal(t, http.StatusCreated, w.Code, env.Message)

	w, _ = s.do(http.MethodDelete, "/api/admin/allowed-domains/"+domain.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
