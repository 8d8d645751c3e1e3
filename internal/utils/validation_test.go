package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Email string `json:"Email" binding:"required" validate:"required,email"`
	Name  string `json:"Name" validate:"required"`
}

func bindOn(body string) (*httptest.ResponseRecorder, bool) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var target bindTarget
	return w, BindAndValidate(c, &target)
}

func TestBindAndValidate(t *testing.T) {
	w, ok := bindOn(`{"Email":"a@example.com","Name":"A"}`)
	assert.True(t, ok)
	assert.Empty(t, w.Body.String())

	// Malformed JSON and failed rules both answer 400.
	w, ok = bindOn(`{"Email":`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, ok = bindOn(`{"Email":"not-an-email","Name":"A"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email")
}

func TestFormatValidationError(t *testing.T) {
	err := validate.Struct(bindTarget{Email: "not-an-email"})
	assert.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Email")
	assert.Contains(t, msg, "Name")

	// Non-validator errors pass through untouched.
	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
}
