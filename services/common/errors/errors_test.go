package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesOnKind(t *testing.T) {
	err := fmt.Errorf("checkout: %w", TenantMismatch(7, 8))

	assert.True(t, stderrors.Is(err, ErrTenantMismatch))
	assert.False(t, stderrors.Is(err, ErrValidation))
	assert.Equal(t, KindTenantMismatch, KindOf(err))
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ProfilePersistence("failed to store account", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to store account: connection refused", err.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestStatusMapping(t *testing.T) {
	cases := map[*Error]int{
		TenantNotPayable(1):         http.StatusConflict,
		InvalidSignature(nil):       http.StatusBadRequest,
		MalformedEvent("x"):         http.StatusUnprocessableEntity,
		Processor("stripe", nil):    http.StatusBadGateway,
		InvalidTransition("a", "b"): http.StatusConflict,
		NotFound("order"):           http.StatusNotFound,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.Code, err.Kind)
	}
	assert.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, TenantNotPayable(7))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"tenant_not_payable"`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Respond(c, stderrors.New("dial tcp: secret host"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret host")
}
