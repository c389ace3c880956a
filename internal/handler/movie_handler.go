package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cinema-api/internal/middleware"
	"cinema-api/internal/model"
	"cinema-api/internal/service"
	"cinema-api/pkg/apierror"
)

const multipartMemory = 8 << 20

type MovieHandler struct {
	service       *service.MovieService
	maxUploadSize int64
}

func NewMovieHandler(service *service.MovieService, maxUploadSize int64) *MovieHandler {
	return &MovieHandler{service: service, maxUploadSize: maxUploadSize}
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.List(r.Context(), model.MovieQuery{
		Sort:     query.Get("sort"),
		Page:     parseIntOrDefault(query.Get("pageNumber"), 1),
		PageSize: parseIntOrDefault(query.Get("pageSize"), 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, &meta)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	movie, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, movie, nil)
}

func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("movieName"))
	if name == "" {
		writeError(w, apierror.BadRequest("query parameter 'movieName' is required", "movieName"))
		return
	}

	items, err := h.service.Search(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	input, image, cleanup, err := h.readMovieForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	movie, err := h.service.Create(r.Context(), principal, input, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, movie, nil)
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	input, image, cleanup, err := h.readMovieForm(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	movie, err := h.service.Update(r.Context(), principal, id, input, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, movie, nil)
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true, "id": id}, nil)
}

// readMovieForm parses the multipart body. The returned image is nil when
// no file was sent in the "image" part; cleanup releases temp files.
func (h *MovieHandler) readMovieForm(w http.ResponseWriter, r *http.Request) (model.MovieInput, io.Reader, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isPayloadTooLarge(err) {
			return model.MovieInput{}, nil, noop, apierror.New("PAYLOAD_TOO_LARGE", "request body exceeds MAX_UPLOAD_SIZE", "MAX_UPLOAD_SIZE", http.StatusRequestEntityTooLarge)
		}
		return model.MovieInput{}, nil, noop, apierror.New("BAD_REQUEST", "invalid multipart body", "", http.StatusBadRequest)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	input, err := movieInputFromForm(r)
	if err != nil {
		cleanup()
		return model.MovieInput{}, nil, noop, err
	}
	if err := validateRequest(input); err != nil {
		cleanup()
		return model.MovieInput{}, nil, noop, err
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil, cleanup, nil
	}
	if err != nil {
		cleanup()
		return model.MovieInput{}, nil, noop, apierror.New("BAD_REQUEST", "invalid image part", err.Error(), http.StatusBadRequest)
	}

	return input, file, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func movieInputFromForm(r *http.Request) (model.MovieInput, error) {
	input := model.MovieInput{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Language:    strings.TrimSpace(r.FormValue("language")),
		Duration:    strings.TrimSpace(r.FormValue("duration")),
		Genre:       strings.TrimSpace(r.FormValue("genre")),
		TrailerURL:  strings.TrimSpace(r.FormValue("trailer_url")),
	}

	var err error
	if input.TicketPrice, err = parseFloatField(r, "ticket_price"); err != nil {
		return model.MovieInput{}, err
	}
	if input.Rating, err = parseFloatField(r, "rating"); err != nil {
		return model.MovieInput{}, err
	}
	if input.PlayingDate, err = parseTimeField(r, "playing_date", time.DateOnly); err != nil {
		return model.MovieInput{}, err
	}
	if input.PlayingTime, err = parseTimeField(r, "playing_time", "15:04"); err != nil {
		return model.MovieInput{}, err
	}

	return input, nil
}

func parseFloatField(r *http.Request, field string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apierror.BadRequest(field+" must be a number", field)
	}
	return v, nil
}

// parseTimeField accepts RFC 3339 or the field's short layout.
func parseTimeField(r *http.Request, field string, layout string) (time.Time, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return time.Time{}, nil
	}

	if v, err := time.Parse(time.RFC3339, raw); err == nil {
		return v.UTC(), nil
	}
	v, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, apierror.BadRequest(field+" has an invalid format", layout)
	}
	return v.UTC(), nil
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
