package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.GenerateToken("user-1", "CANTEEN_OWNER")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "CANTEEN_OWNER", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, tokenIssuer, claims.Issuer)

	again, err := m.GenerateToken("user-1", "CANTEEN_OWNER")
	require.NoError(t, err)
	second, err := m.ParseToken(again)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, second.ID, "every token gets its own id")
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	expired, err := NewTokenManager("secret", time.Nanosecond).GenerateToken("u", "USER")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	forged, err := NewTokenManager("other", time.Hour).GenerateToken("u", "USER")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"garbage": "abc.def.ghi",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ParseToken(token)
			assert.Error(t, err)
		})
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "Rp 0"},
		{"999", "Rp 999"},
		{"15000", "Rp 15.000"},
		{"15000.5", "Rp 15.000,50"},
		{"1234567.89", "Rp 1.234.567,89"},
		{"-2500", "Rp -2.500"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatRupiah(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestPasswordProblem(t *testing.T) {
	assert.Equal(t, "", PasswordProblem("Rahasia123"))
	assert.Contains(t, PasswordProblem("Ra1"), "at least 8")
	assert.Contains(t, PasswordProblem("rahasia123"), "uppercase")
	assert.Contains(t, PasswordProblem("RAHASIA123"), "lowercase")
	assert.Contains(t, PasswordProblem("Rahasiaaaa"), "number")
}

func TestUsernameAndEmailDomain(t *testing.T) {
	assert.True(t, ValidUsername("budi_123"))
	assert.False(t, ValidUsername("bu"))
	assert.False(t, ValidUsername("budi santoso"))
	assert.Equal(t, "student.ub.ac.id", EmailDomain("Budi@Student.UB.ac.id"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
}

func TestAppErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  *AppError
		code int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewBusinessError("Insufficient stock for %s", "Nasi"), http.StatusBadRequest},
		{NewUnauthorizedError("who"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewNotFoundError("gone"), http.StatusNotFound},
		{NewConflictError("dup"), http.StatusConflict},
		{&AppError{}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.StatusCode(), tc.err.Message)
	}

	wrapped := fmt.Errorf("create order: %w", NewBusinessError("Insufficient stock for Nasi"))
	assert.True(t, IsKind(wrapped, KindBusinessRule))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindBusinessRule))
}

func respond(fn func(c *gin.Context)) (*httptest.ResponseRecorder, JSONResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	fn(c)
	var body JSONResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondAppError(t *testing.T) {
	w, body := respond(func(c *gin.Context) {
		RespondAppError(c, NewValidationError("Validation error", FieldError{Field: "rating", Message: "rating must be between 1 and 5"}))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "rating", body.Errors[0].Field)

	w, body = respond(func(c *gin.Context) { RespondAppError(c, gorm.ErrDuplicatedKey) })
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = respond(func(c *gin.Context) { RespondAppError(c, gorm.ErrRecordNotFound) })
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = respond(func(c *gin.Context) { RespondAppError(c, errors.New("dial tcp: refused")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestRespondBindError(t *testing.T) {
	type input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,password"`
		Status   string `json:"status" binding:"omitempty,oneof=WAITING COOKING"`
	}

	w, body := respond(func(c *gin.Context) {
		var in input
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"weak","status":"DONE"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		RespondBindError(c, c.ShouldBindJSON(&in))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error", body.Message)
	fields := map[string]string{}
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "email must be a valid email", fields["email"])
	assert.Contains(t, fields["password"], "at least 8 characters")
	assert.Equal(t, "status must be one of: WAITING COOKING", fields["status"])

	_, body = respond(func(c *gin.Context) {
		var in input
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
		c.Request.Header.Set("Content-Type", "application/json")
		RespondBindError(c, c.ShouldBindJSON(&in))
	})
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "body", body.Errors[0].Field)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}
