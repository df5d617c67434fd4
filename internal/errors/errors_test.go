package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/tundr-problems/internal/logging"
)

var errBase = stderrors.New("connection refused")

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "message only", err: &Error{Message: "failed"}, want: "failed"},
		{
			name: "full",
			err:  &Error{Message: "failed", Operation: "Get", Component: "redis_store", Err: errBase},
			want: "failed: operation=Get, component=redis_store: connection refused",
		},
		{name: "wrapped only", err: &Error{Err: errBase}, want: "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))

	wrapped := Wrap(errBase, "dial")
	assert.ErrorIs(t, wrapped, errBase)
	assert.NotEmpty(t, wrapped.Stack)

	rewrapped := Wrapf(wrapped, "retry %d", 2)
	assert.Equal(t, "retry 2", rewrapped.Message)
	assert.Equal(t, "dial", wrapped.Message, "the original is left untouched")
	assert.Equal(t, wrapped.Stack, rewrapped.Stack)
	assert.ErrorIs(t, rewrapped, errBase)
}

func TestWrap_KeepsContext(t *testing.T) {
	err := Wrapf(E("Get", "redis_store", errBase), "stored problem %q is unreadable", "p1")
	assert.Equal(t, `stored problem "p1" is unreadable: operation=Get, component=redis_store: connection refused`, err.Error())
	assert.ErrorIs(t, err, errBase)
}

func TestE(t *testing.T) {
	assert.Nil(t, E("Get", "store", nil))

	err := fmt.Errorf("outer: %w", E("Get", "store", errBase))
	target, ok := Find(err)
	require.True(t, ok)
	assert.Equal(t, "Get", target.Operation)
	assert.Equal(t, "store", target.Component)
	assert.Equal(t, errBase, target.Unwrap())
	assert.ErrorIs(t, err, errBase)
	assert.NotErrorIs(t, err, stderrors.New("connection refused"))

	_, ok = Find(errBase)
	assert.False(t, ok)
	_, ok = Find(nil)
	assert.False(t, ok)
}

func TestFields(t *testing.T) {
	fields := E("Put", "redis_store", errBase).Fields()
	assert.Equal(t, "Put", fields["operation"])
	assert.Equal(t, "redis_store", fields["component"])
	assert.Equal(t, "operation=Put, component=redis_store: connection refused", fields["error"])
	assert.NotEmpty(t, fields["origin"])

	assert.Equal(t, map[string]interface{}{"error": "bare"}, (&Error{Message: "bare"}).Fields())
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.InfoLevel, &buf)

	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "Recovered from panic")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.InfoLevel, &buf)

	status := http.StatusNotFound
	h := ErrorHandler(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "body")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, buf.String())

	status = http.StatusBadGateway
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upstream", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, buf.String(), "Request error")
	assert.Contains(t, buf.String(), "/upstream")
}
