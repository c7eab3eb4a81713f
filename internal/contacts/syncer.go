package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/fields"
	"github.com/roach88/contactsync/internal/row"
	"github.com/roach88/contactsync/internal/txn"
)

// Default photo polling budget: 70 attempts 100ms apart.
const (
	DefaultPhotoAttempts = 70
	DefaultPhotoInterval = 100 * time.Millisecond
)

// RowSource serves the read path.
type RowSource interface {
	RawContact(ctx context.Context, id int64) (row.Values, bool, error)
	DataRows(ctx context.Context, rawContactID int64) ([]row.Values, error)
}

// AssetStore accepts large binary assets out of band and reports where the
// processed result was published.
type AssetStore interface {
	WriteAsset(ctx context.Context, addr string, data []byte) error
	DerivedAddress(ctx context.Context, addr string) (string, bool, error)
}

// Backend is everything a Syncer needs from a provider.
type Backend interface {
	txn.Transport
	RowSource
	AssetStore
}

// Syncer stores contacts through a Backend.
//
// Thread-safety: a Syncer holds no per-call state and may be shared.
// Concurrent writes to the same contact are not coordinated.
type Syncer struct {
	backend  Backend
	registry *fields.Registry
	logger   *slog.Logger

	batchOpts     []txn.Option
	photoAttempts int
	photoInterval time.Duration
	newUID        func() string
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchOptions passes options to every txn.Batch the Syncer creates.
func WithBatchOptions(opts ...txn.Option) Option {
	return func(s *Syncer) {
		s.batchOpts = append(s.batchOpts, opts...)
	}
}

// WithPhotoPolling sets how many times and how often the Syncer checks for
// a processed photo. Non-positive values keep the defaults.
func WithPhotoPolling(attempts int, interval time.Duration) Option {
	return func(s *Syncer) {
		if attempts > 0 {
			s.photoAttempts = attempts
		}
		if interval > 0 {
			s.photoInterval = interval
		}
	}
}

// WithUIDGenerator sets the source id generator for contacts created
// without a UID. Defaults to UUIDv7.
func WithUIDGenerator(fn func() string) Option {
	return func(s *Syncer) {
		if fn != nil {
			s.newUID = fn
		}
	}
}

// New creates a Syncer. The registry must be fully populated; it is only
// read from here on.
func New(backend Backend, registry *fields.Registry, opts ...Option) *Syncer {
	s := &Syncer{
		backend:       backend,
		registry:      registry,
		logger:        slog.Default(),
		photoAttempts: DefaultPhotoAttempts,
		photoInterval: DefaultPhotoInterval,
		newUID:        func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) newBatch() *txn.Batch {
	opts := append([]txn.Option{txn.WithLogger(s.logger)}, s.batchOpts...)
	return txn.New(s.backend, opts...)
}

// Create stores c as a new raw contact and returns its id.
//
// c is not modified. A contact without a UID gets a generated source id.
func (s *Syncer) Create(ctx context.Context, c *contact.Contact) (int64, error) {
	uid := c.UID
	if uid == "" {
		uid = s.newUID()
	}

	b := s.newBatch()
	parent := b.Enqueue(row.NewInsert(row.TableRawContacts).
		With(row.ColSourceID, row.String(uid)).
		With(row.ColStarred, row.Bool(c.Starred)).
		With(row.ColDirty, row.Bool(false)))

	for _, op := range s.registry.BuildRows(c) {
		b.Enqueue(op.WithBackReference(row.ColRawContactID, parent))
	}

	affected, err := b.Commit(ctx)
	if err != nil {
		return 0, fmt.Errorf("create contact %s: %w", uid, err)
	}
	res, _ := b.Result(parent)
	if !res.HasID() {
		return 0, fmt.Errorf("create contact %s: provider returned no id", uid)
	}
	id := res.ID

	s.logger.Info("contact created",
		"id", id,
		"uid", uid,
		"rows", affected,
		"calls", b.Stats().Calls)

	s.attachPhoto(ctx, id, c.Photo)
	return id, nil
}

// Update replaces the stored contact id with c.
//
// Data rows of the types the registry owns are deleted and rebuilt; rows of
// other types are kept. Returns ErrNotFound if id does not exist.
func (s *Syncer) Update(ctx context.Context, id int64, c *contact.Contact) error {
	_, ok, err := s.backend.RawContact(ctx, id)
	if err != nil {
		return fmt.Errorf("update contact %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("update contact %d: %w", id, ErrNotFound)
	}

	b := s.newBatch()

	parent := row.NewUpdate(row.TableRawContacts).
		With(row.ColStarred, row.Bool(c.Starred)).
		Where(row.ColID+" = ?", row.Int(id))
	if c.UID != "" {
		parent = parent.With(row.ColSourceID, row.String(c.UID))
	}
	parentIdx := b.Enqueue(parent)

	if owned := s.registry.OwnedRowTypes(); len(owned) > 0 {
		b.Enqueue(ownedRowsDelete(id, owned))
	}

	for _, op := range s.registry.BuildRows(c) {
		b.Enqueue(op.With(row.ColRawContactID, row.Int(id)))
	}

	affected, err := b.Commit(ctx)
	if err != nil {
		// The contact may have been deleted since the check above, failing
		// the data inserts on its foreign key.
		if _, ok, lerr := s.backend.RawContact(ctx, id); lerr == nil && !ok {
			return fmt.Errorf("update contact %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("update contact %d: %w", id, err)
	}
	if res, _ := b.Result(parentIdx); res.Affected() == 0 {
		return fmt.Errorf("update contact %d: %w", id, ErrNotFound)
	}

	s.logger.Info("contact updated",
		"id", id,
		"rows", affected,
		"calls", b.Stats().Calls)

	s.attachPhoto(ctx, id, c.Photo)
	return nil
}

// ownedRowsDelete deletes the data rows of id whose type is in owned.
func ownedRowsDelete(id int64, owned []string) row.Operation {
	args := make([]row.Value, 0, len(owned)+1)
	args = append(args, row.Int(id))
	for _, t := range owned {
		args = append(args, row.String(t))
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(owned)), ",")
	selection := fmt.Sprintf("%s = ? AND %s IN (%s)", row.ColRawContactID, row.ColMimeType, marks)
	return row.NewDelete(row.TableData).Where(selection, args...)
}

// Delete removes the raw contact id together with all its data rows.
func (s *Syncer) Delete(ctx context.Context, id int64) error {
	b := s.newBatch()
	b.Enqueue(row.NewDelete(row.TableRawContacts).Where(row.ColID+" = ?", row.Int(id)))

	affected, err := b.Commit(ctx)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete contact %d: %w", id, ErrNotFound)
	}

	s.logger.Info("contact deleted", "id", id)
	return nil
}

// Load reads the stored contact id. Data rows of unknown types are skipped.
func (s *Syncer) Load(ctx context.Context, id int64) (*contact.Contact, error) {
	raw, ok, err := s.backend.RawContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load contact %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("load contact %d: %w", id, ErrNotFound)
	}

	c := &contact.Contact{}
	c.UID, _ = raw.String(row.ColSourceID)
	if starred, ok := raw.Int(row.ColStarred); ok {
		c.Starred = starred != 0
	}

	rows, err := s.backend.DataRows(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load contact %d: %w", id, err)
	}

	var skipped int
	for _, values := range rows {
		mimetype, _ := values.String(row.ColMimeType)
		if !s.registry.ApplyRow(mimetype, values, c) {
			skipped++
		}
	}
	if skipped > 0 {
		s.logger.Debug("skipped data rows", "id", id, "count", skipped)
	}
	return c, nil
}

// attachPhoto runs the photo protocol for a freshly written contact.
// Failures are logged and never fail the write.
func (s *Syncer) attachPhoto(ctx context.Context, id int64, photo []byte) {
	if len(photo) == 0 {
		return
	}
	err := s.InsertPhoto(ctx, id, photo)
	switch {
	case err == nil:
	case errors.Is(err, ErrPhotoTimeout):
		s.logger.Warn("photo processing timed out, dirty flag left as is",
			"id", id, "error", err)
	default:
		s.logger.Warn("photo not stored", "id", id, "error", err)
	}
}
