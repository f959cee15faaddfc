package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"humangov/internal/documents"
	"humangov/internal/shared/awsx"
	"humangov/internal/shared/metrics"
	"humangov/internal/shared/storage/object"
	"humangov/internal/shared/telemetry"
)

// Documents stores scanned ID files and links to them.
type Documents interface {
	Upload(ctx context.Context, stem string, r io.Reader) (key string, err error)
	SignedURL(ctx context.Context, key string) (string, error)
}

// Upload is the file part of a create request.
type Upload struct {
	FileName string
	Body     io.Reader
}

// Service contains business logic for records.
type Service struct {
	Repo Repo
	Docs Documents
	// NewID mints record ids; uuid.NewString when nil.
	NewID func() string
}

// List returns all records ordered by first name. Store failures are logged
// and yield an empty list.
func (s *Service) List(ctx context.Context) []Record {
	recs, err := s.Repo.Scan(ctx)
	if err != nil {
		s.storeFailed("scan", "", err)
		return []Record{}
	}
	sortByFirstName(recs)
	return recs
}

// Search returns records whose first name contains name, ordered like List.
func (s *Service) Search(ctx context.Context, name string) []Record {
	recs, err := s.Repo.ScanFirstNameContains(ctx, name)
	if err != nil {
		s.storeFailed("search", "", err)
		return []Record{}
	}
	sortByFirstName(recs)
	return recs
}

// Create validates the fields and file, uploads the document and inserts the
// record. Upload and insert are independent: a failed insert leaves the
// uploaded object in place.
func (s *Service) Create(ctx context.Context, f Fields, up Upload) (Record, error) {
	if errs := ValidateFields(f); errs != nil {
		return Record{}, ErrInvalidInput
	}
	if up.Body == nil {
		return Record{}, documents.ErrMissingFile
	}
	if err := documents.CheckFile(up.FileName); err != nil {
		return Record{}, err
	}

	key, err := s.Docs.Upload(ctx, f.FirstName, up.Body)
	if err != nil {
		return Record{}, err
	}

	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	rec := Record{ID: newID(), PDF: key}.withFields(f)

	if err := s.Repo.Put(ctx, rec); err != nil {
		s.storeFailed("put", rec.ID, err)
		telemetry.Warn("records.orphaned_object", map[string]any{
			"record_id": rec.ID,
			"key":       key,
		})
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	metrics.IncRecordCreated()
	telemetry.Info("records.created", map[string]any{
		"record_id": rec.ID,
		"key":       key,
	})
	return rec, nil
}

// Get returns a record by id.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, ErrNotFound
	}
	rec, err := s.Repo.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.storeFailed("get", id, err)
	}
	return rec, err
}

// Update replaces the editable fields of an existing record.
func (s *Service) Update(ctx context.Context, id string, f Fields) error {
	if errs := ValidateFields(f); errs != nil {
		return ErrInvalidInput
	}
	if err := s.Repo.UpdateFields(ctx, id, f); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.storeFailed("update", id, err)
		}
		return err
	}
	metrics.IncRecordUpdated()
	telemetry.Info("records.updated", map[string]any{"record_id": id})
	return nil
}

// Delete removes the record. Its document stays in the object store.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.storeFailed("delete", id, err)
		}
		return err
	}
	metrics.IncRecordDeleted()
	telemetry.Info("records.deleted", map[string]any{"record_id": id})
	return nil
}

// DocumentURL returns a signed link to the record's document. A record
// without a document is reported as ErrNotFound.
func (s *Service) DocumentURL(ctx context.Context, id string) (string, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.PDF == "" {
		return "", ErrNotFound
	}
	url, err := s.Docs.SignedURL(ctx, rec.PDF)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return url, nil
}

func (s *Service) storeFailed(op, id string, err error) {
	metrics.IncRecordStoreError()
	fields := map[string]any{
		"op":    op,
		"error": awsx.ErrorMessage(err),
	}
	if id != "" {
		fields["record_id"] = id
	}
	if code := awsx.ErrorCode(err); code != "" {
		fields["code"] = code
	}
	telemetry.Error("records.store_failed", fields)
}

// sortByFirstName orders by byte-wise first name, keeping store order for
// equal names.
func sortByFirstName(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].FirstName < recs[j].FirstName
	})
}
