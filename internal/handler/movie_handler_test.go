package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMultipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "poster.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/movies", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestReadMovieForm(t *testing.T) {
	t.Parallel()

	h := NewMovieHandler(nil, 1<<20)

	t.Run("parses typed fields", func(t *testing.T) {
		req := newMultipartRequest(t, map[string]string{
			"name":         " Heat ",
			"rating":       "8.3",
			"ticket_price": "12.50",
			"playing_date": "2026-05-01",
			"playing_time": "20:30",
		}, nil)

		input, image, cleanup, err := h.readMovieForm(httptest.NewRecorder(), req)
		require.NoError(t, err)
		defer cleanup()

		assert.Nil(t, image)
		assert.Equal(t, "Heat", input.Name)
		assert.InDelta(t, 8.3, input.Rating, 0.0001)
		assert.InDelta(t, 12.5, input.TicketPrice, 0.0001)
		assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), input.PlayingDate)
		assert.Equal(t, 20, input.PlayingTime.Hour())
	})

	t.Run("returns the image part", func(t *testing.T) {
		req := newMultipartRequest(t, map[string]string{"name": "Heat"}, []byte("png-bytes"))

		_, image, cleanup, err := h.readMovieForm(httptest.NewRecorder(), req)
		require.NoError(t, err)
		defer cleanup()

		assert.NotNil(t, image)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		req := newMultipartRequest(t, map[string]string{"rating": "5"}, nil)

		_, _, _, err := h.readMovieForm(httptest.NewRecorder(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("rejects non numeric rating", func(t *testing.T) {
		req := newMultipartRequest(t, map[string]string{"name": "Heat", "rating": "great"}, nil)

		_, _, _, err := h.readMovieForm(httptest.NewRecorder(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rating must be a number")
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		small := NewMovieHandler(nil, 64)
		req := newMultipartRequest(t, map[string]string{"name": "Heat"}, bytes.Repeat([]byte("x"), 4096))

		_, _, _, err := small.readMovieForm(httptest.NewRecorder(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("rejects non multipart bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/movies", bytes.NewBufferString(`{"name":"Heat"}`))
		req.Header.Set("Content-Type", "application/json")

		_, _, _, err := h.readMovieForm(httptest.NewRecorder(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid multipart body")
	})
}
