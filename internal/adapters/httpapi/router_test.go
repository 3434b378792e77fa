package httpapi

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/pin-roster/internal/adapters/qrcode"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
)

type stubFinder map[string]*employee.Employee

func (s stubFinder) GetEmployee(_ context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	if in.ID == "broken" {
		return nil, errors.New("boom")
	}
	e, ok := s[in.ID]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(string, int) (image.Image, error) { return nil, errors.New("nope") }

func (failingEncoder) EncodePNG(io.Writer, string, int) error { return errors.New("nope") }

func newTestRouter(t *testing.T) (http.Handler, *qrcode.Codec) {
	t.Helper()

	codec, err := qrcode.New(qrcode.Options{Margin: -1})
	require.NoError(t, err)

	finder := stubFinder{
		"emp-1": {ID: "emp-1", Name: "Ana", Position: employee.PositionTI, Code: "AbC12345"},
	}
	return NewRouter(finder, codec, nil), codec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestRouter_CodeImage(t *testing.T) {
	t.Parallel()

	router, codec := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/codes/ZZZZ9999.png?size=128", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	text, err := codec.Decode(img)
	require.NoError(t, err)
	assert.Equal(t, "ZZZZ9999", text)
}

func TestRouter_EmployeeImage(t *testing.T) {
	t.Parallel()

	router, codec := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees/emp-1/qr.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)

	text, err := codec.Decode(img)
	require.NoError(t, err)
	assert.Equal(t, "AbC12345", text)
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	cases := map[string]int{
		"/codes/short.png":              http.StatusBadRequest,
		"/codes/AbC12345.png?size=9999": http.StatusBadRequest,
		"/codes/AbC12345.png?size=abc":  http.StatusBadRequest,
		"/employees/missing/qr.png":     http.StatusNotFound,
		"/employees/broken/qr.png":      http.StatusInternalServerError,
		"/unknown":                      http.StatusNotFound,
	}

	for path, want := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_EncoderFailure(t *testing.T) {
	t.Parallel()

	router := NewRouter(stubFinder{}, failingEncoder{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/codes/AbC12345.png", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
