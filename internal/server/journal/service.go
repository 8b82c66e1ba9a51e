// Package journal implements the entry lifecycle: create, list, get, update
// and delete, always scoped to the authenticated owner.
package journal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/server/events"
	"github.com/iudanet/geojournal/internal/server/images"
	"github.com/iudanet/geojournal/internal/server/storage"
	"github.com/iudanet/geojournal/internal/validation"
)

const publishTimeout = 5 * time.Second

// Input is the raw, client-supplied part of an entry as received from a form
// or JSON body. Coordinates stay strings so parse failures are reported per field.
type Input struct {
	Title       string
	Description string
	Latitude    string
	Longitude   string
}

// Upload is an image received together with a create request.
type Upload struct {
	Filename string
	Data     []byte
}

// Config holds service limits.
type Config struct {
	MaxUploadSize int64
}

// Service управляет жизненным циклом записей журнала
type Service struct {
	logger    *slog.Logger
	entries   storage.EntryStorage
	images    images.Store
	publisher events.Publisher
	now       func() time.Time
	maxUpload int64
}

// NewService creates a journal service. A nil publisher disables events.
func NewService(logger *slog.Logger, entries storage.EntryStorage, imgs images.Store, publisher events.Publisher, cfg Config) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		logger:    logger,
		entries:   entries,
		images:    imgs,
		publisher: publisher,
		now:       time.Now,
		maxUpload: cfg.MaxUploadSize,
	}
}

// validate trims text fields and collects every violation.
func validate(in Input) (models.EntryFields, validation.Errors) {
	var errs validation.Errors

	fields := models.EntryFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
	errs.Check("title", validation.ValidateTitle(fields.Title))
	errs.Check("description", validation.ValidateDescription(fields.Description))

	if lat, err := validation.ParseCoordinate(in.Latitude); err != nil {
		errs.Add("latitude", "latitude "+err.Error())
	} else {
		fields.Latitude = lat
		errs.Check("latitude", validation.ValidateLatitude(lat))
	}

	if lon, err := validation.ParseCoordinate(in.Longitude); err != nil {
		errs.Add("longitude", "longitude "+err.Error())
	} else {
		fields.Longitude = lon
		errs.Check("longitude", validation.ValidateLongitude(lon))
	}

	return fields, errs
}

// Create validates the fields, stores the image and inserts the entry.
// origin is the scheme://host of the request and is used to resolve the image URL.
func (s *Service) Create(ctx context.Context, owner models.Owner, in Input, upload *Upload, origin string) (*models.Entry, error) {
	fields, errs := validate(in)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if upload == nil || len(upload.Data) == 0 {
		return nil, apperr.New(apperr.KindMissingImage, "Please upload an image")
	}

	info, err := images.Inspect(upload.Data, s.maxUpload)
	if err != nil {
		s.logger.WarnContext(ctx, "rejected upload",
			slog.String("filename", upload.Filename),
			slog.Any("error", err))
		if errors.Is(err, images.ErrImageTooLarge) {
			return nil, apperr.Validation(apperr.FieldError{Field: "image", Message: "image exceeds the maximum upload size"})
		}
		return nil, apperr.Validation(apperr.FieldError{Field: "image", Message: "only image files are allowed"})
	}

	key := images.NewKey(info.Ext)
	if err := s.images.Put(ctx, key, info.ContentType, upload.Data); err != nil {
		return nil, apperr.Fatal("failed to store image", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	entry := &models.Entry{
		ID:          uuid.New().String(),
		Owner:       owner,
		Title:       fields.Title,
		Description: fields.Description,
		ImageURL:    s.images.URL(origin, key),
		ImageKey:    key,
		Latitude:    fields.Latitude,
		Longitude:   fields.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		// запись не создана, картинка больше никому не нужна
		if derr := s.images.Delete(ctx, key); derr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned image", slog.String("key", key), slog.Any("error", derr))
		}
		return nil, apperr.Fatal("failed to create entry", err)
	}

	s.logger.InfoContext(ctx, "entry created",
		slog.String("entry_id", entry.ID),
		slog.String("user_id", owner.ID),
		slog.String("format", info.Format))

	s.publish(ctx, events.EntryCreated, entry)

	return entry, nil
}

// Get returns the entry only when it exists and belongs to ownerID.
func (s *Service) Get(ctx context.Context, ownerID, entryID string) (*models.Entry, error) {
	if !validID(entryID) {
		return nil, apperr.NotFound("Entry")
	}

	entry, err := s.entries.GetEntry(ctx, ownerID, entryID)
	if err != nil {
		return nil, entryError(err, "failed to get entry")
	}
	return entry, nil
}

// Update re-validates all mutable fields and overwrites them.
// Owner and image reference are never touched.
func (s *Service) Update(ctx context.Context, ownerID, entryID string, in Input) (*models.Entry, error) {
	fields, errs := validate(in)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	entry, err := s.Get(ctx, ownerID, entryID)
	if err != nil {
		return nil, err
	}

	entry.Title = fields.Title
	entry.Description = fields.Description
	entry.Latitude = fields.Latitude
	entry.Longitude = fields.Longitude
	entry.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	if entry.UpdatedAt.Before(entry.CreatedAt) {
		entry.UpdatedAt = entry.CreatedAt
	}

	if err := s.entries.UpdateEntry(ctx, ownerID, entry); err != nil {
		return nil, entryError(err, "failed to update entry")
	}

	s.logger.InfoContext(ctx, "entry updated", slog.String("entry_id", entry.ID), slog.String("user_id", ownerID))
	s.publish(ctx, events.EntryUpdated, entry)

	return entry, nil
}

// Delete removes the entry; a second delete of the same id fails with NotFound.
func (s *Service) Delete(ctx context.Context, ownerID, entryID string) error {
	if !validID(entryID) {
		return apperr.NotFound("Entry")
	}

	entry, err := s.entries.DeleteEntry(ctx, ownerID, entryID)
	if err != nil {
		return entryError(err, "failed to delete entry")
	}

	if err := s.images.Delete(ctx, entry.ImageKey); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image", slog.String("key", entry.ImageKey), slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "entry deleted", slog.String("entry_id", entry.ID), slog.String("user_id", ownerID))
	s.publish(ctx, events.EntryDeleted, entry)

	return nil
}

// publish never fails the caller; the request context may already be done by
// the time the broker answers, so a detached one is used.
func (s *Service) publish(ctx context.Context, t events.Type, entry *models.Entry) {
	event := events.NewEvent(t, entry.ID, entry.Owner.ID)
	event.ImageURL = entry.ImageURL
	event.Latitude = entry.Latitude
	event.Longitude = entry.Longitude

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish entry event",
			slog.String("type", string(t)),
			slog.String("entry_id", entry.ID),
			slog.Any("error", err))
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func entryError(err error, msg string) error {
	if errors.Is(err, storage.ErrEntryNotFound) {
		return apperr.NotFound("Entry")
	}
	return apperr.Fatal(msg, err)
}
