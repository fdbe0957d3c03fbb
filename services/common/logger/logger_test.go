package logger

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TeesToExtraWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("production", "payment-service", &buf)
	require.NoError(t, err)

	log.Info("checkout session created")
	_ = log.Sync()

	assert.Contains(t, buf.String(), `"service":"payment-service"`)
	assert.Contains(t, buf.String(), "checkout session created")
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(RequestIDKey, "req-1")
	assert.Equal(t, "req-1", RequestID(c))

	ctx := WithRequestID(context.Background(), "req-2")
	assert.Equal(t, "req-2", RequestID(ctx))

	assert.Equal(t, "", RequestID(context.Background()))
}
