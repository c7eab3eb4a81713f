package fields

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/row"
)

// ErrDuplicateWriter is returned when a second writer registers for a row
// type that already has one.
var ErrDuplicateWriter = errors.New("row type already has a writer")

// Reader fills contact fields from one data row.
type Reader interface {
	RowType() string
	Read(values row.Values, c *contact.Contact)
}

// Writer builds the data rows of its row type for a contact.
//
// Build returns an empty slice when the contact has nothing for this row
// type. Returned operations are inserts into the data table without a
// parent id; the caller links them to the raw contact.
type Writer interface {
	RowType() string
	Build(c *contact.Contact) []row.Operation
}

// NewReader adapts a function to Reader.
func NewReader(rowType string, fn func(row.Values, *contact.Contact)) Reader {
	return readerFunc{rowType: rowType, fn: fn}
}

// NewWriter adapts a function to Writer.
func NewWriter(rowType string, fn func(*contact.Contact) []row.Operation) Writer {
	return writerFunc{rowType: rowType, fn: fn}
}

type readerFunc struct {
	rowType string
	fn      func(row.Values, *contact.Contact)
}

func (r readerFunc) RowType() string { return r.rowType }
func (r readerFunc) Read(values row.Values, c *contact.Contact) { r.fn(values, c) }

type writerFunc struct {
	rowType string
	fn      func(*contact.Contact) []row.Operation
}

func (w writerFunc) RowType() string { return w.rowType }
func (w writerFunc) Build(c *contact.Contact) []row.Operation { return w.fn(c) }

// Registry dispatches data rows to readers and contacts to writers.
type Registry struct {
	logger  *slog.Logger
	readers map[string][]Reader
	writers []Writer
	owned   map[string]struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger:  slog.Default(),
		readers: make(map[string][]Reader),
		owned:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterReader adds a reader for its row type after any readers already
// registered for it.
func (r *Registry) RegisterReader(h Reader) {
	r.readers[h.RowType()] = append(r.readers[h.RowType()], h)
}

// RegisterWriter adds the writer for its row type.
func (r *Registry) RegisterWriter(w Writer) error {
	if _, ok := r.owned[w.RowType()]; ok {
		return fmt.Errorf("register writer %q: %w", w.RowType(), ErrDuplicateWriter)
	}
	r.owned[w.RowType()] = struct{}{}
	r.writers = append(r.writers, w)
	return nil
}

// ApplyRow passes a data row to every reader registered for rowType.
//
// It returns false when no reader knows rowType. That is not an error: the
// row belongs to some other agent and is left alone.
func (r *Registry) ApplyRow(rowType string, raw row.Values, c *contact.Contact) bool {
	readers := r.readers[rowType]
	if len(readers) == 0 {
		r.logger.Warn("ignoring data row of unknown type", "mimetype", rowType)
		return false
	}
	values := normalize(raw)
	for _, h := range readers {
		h.Read(values, c)
	}
	return true
}

// BuildRows runs every writer over c in registration order and
// concatenates the results. Each operation is stamped with its writer's
// row type.
func (r *Registry) BuildRows(c *contact.Contact) []row.Operation {
	ops := []row.Operation{}
	for _, w := range r.writers {
		for _, op := range w.Build(c) {
			ops = append(ops, op.With(row.ColMimeType, row.String(w.RowType())))
		}
	}
	return ops
}

// OwnedRowTypes returns the row types that have a writer, sorted. On update
// exactly these rows are deleted and rebuilt.
func (r *Registry) OwnedRowTypes() []string {
	out := make([]string, 0, len(r.owned))
	for t := range r.owned {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// normalize drops blank columns and NFC-normalizes strings.
func normalize(raw row.Values) row.Values {
	values := raw.WithoutBlank()
	for _, k := range values.Keys() {
		if s, ok := values.Get(k); ok {
			if str, isStr := s.(row.String); isStr {
				values.Set(k, row.String(norm.NFC.String(string(str))))
			}
		}
	}
	return values
}
