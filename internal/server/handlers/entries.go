package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/journal"
	"github.com/iudanet/geojournal/pkg/api"
)

// multipartMemory сколько multipart данных держать в памяти, остальное во временных файлах
const multipartMemory = 8 << 20

// EntryHandler обрабатывает /api/entries
type EntryHandler struct {
	logger        *slog.Logger
	journal       *journal.Service
	respond       *Responder
	maxUploadSize int64
}

// NewEntryHandler создает handler для записей журнала
func NewEntryHandler(logger *slog.Logger, svc *journal.Service, respond *Responder, maxUploadSize int64) *EntryHandler {
	return &EntryHandler{
		logger:        logger,
		journal:       svc,
		respond:       respond,
		maxUploadSize: maxUploadSize,
	}
}

// Create обрабатывает POST /api/entries (multipart/form-data)
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if h.maxUploadSize > 0 {
		// запас на текстовые поля и заголовки частей
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respond.Error(w, r, apperr.Validation(apperr.FieldError{Field: "image", Message: "image exceeds the maximum upload size"}))
			return
		}
		h.logger.WarnContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		h.respond.Error(w, r, apperr.New(apperr.KindValidation, "Request must be multipart/form-data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	upload, err := h.readUpload(r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	entry, err := h.journal.Create(ctx, owner, formInput(r), upload, requestOrigin(r))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusCreated, "Entry created successfully", api.EntryResponse{Entry: toAPIEntry(entry)})
}

// List обрабатывает GET /api/entries?page&limit&startDate&endDate
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	res, err := h.journal.List(r.Context(), owner.ID, journal.ListQuery{
		Page:      q.Get("page"),
		Limit:     q.Get("limit"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	list := api.EntryList{
		Entries: make([]api.Entry, 0, len(res.Entries)),
		Pagination: api.Pagination{
			CurrentPage:    res.Pagination.CurrentPage,
			TotalPages:     res.Pagination.TotalPages,
			TotalEntries:   res.Pagination.TotalEntries,
			EntriesPerPage: res.Pagination.EntriesPerPage,
		},
	}
	for _, e := range res.Entries {
		list.Entries = append(list.Entries, toAPIEntry(e))
	}

	h.respond.JSON(w, http.StatusOK, "", list)
}

// Get обрабатывает GET /api/entries/{id}
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	entry, err := h.journal.Get(r.Context(), owner.ID, r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, "", api.EntryResponse{Entry: toAPIEntry(entry)})
}

// Update обрабатывает PUT /api/entries/{id}; принимает JSON или форму
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	in, err := h.updateInput(r)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	entry, err := h.journal.Update(r.Context(), owner.ID, r.PathValue("id"), in)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, "Entry updated successfully", api.EntryResponse{Entry: toAPIEntry(entry)})
}

// Delete обрабатывает DELETE /api/entries/{id}
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.journal.Delete(r.Context(), owner.ID, r.PathValue("id")); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.JSON(w, http.StatusOK, "Entry deleted successfully", nil)
}

func (h *EntryHandler) owner(w http.ResponseWriter, r *http.Request) (models.Owner, bool) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, apperr.New(apperr.KindUnauthenticated, "Not authorized"))
	}
	return owner, ok
}

// readUpload returns nil when the form has no image part.
func (h *EntryHandler) readUpload(r *http.Request) (*journal.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Invalid image upload", err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if h.maxUploadSize > 0 {
		reader = io.LimitReader(file, h.maxUploadSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperr.Fatal("failed to read upload", err)
	}

	return &journal.Upload{Filename: header.Filename, Data: data}, nil
}

func (h *EntryHandler) updateInput(r *http.Request) (journal.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/json":
		var req api.UpdateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return journal.Input{}, apperr.New(apperr.KindValidation, "Invalid request body")
		}
		return journal.Input{
			Title:       req.Title,
			Description: req.Description,
			Latitude:    req.Latitude.String(),
			Longitude:   req.Longitude.String(),
		}, nil
	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return journal.Input{}, apperr.New(apperr.KindValidation, "Invalid form body")
		}
	default:
		if err := r.ParseForm(); err != nil {
			return journal.Input{}, apperr.New(apperr.KindValidation, "Invalid form body")
		}
	}

	return formInput(r), nil
}

func formInput(r *http.Request) journal.Input {
	return journal.Input{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Latitude:    r.PostFormValue("latitude"),
		Longitude:   r.PostFormValue("longitude"),
	}
}

// requestOrigin восстанавливает scheme://host запроса с учетом прокси
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}

func toAPIEntry(e *models.Entry) api.Entry {
	return api.Entry{
		ID: e.ID,
		Owner: api.Owner{
			ID:    e.Owner.ID,
			Name:  e.Owner.Name,
			Email: e.Owner.Email,
		},
		Title:       e.Title,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
