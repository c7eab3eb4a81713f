package contacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sethvargo/go-retry"

	"github.com/roach88/contactsync/internal/row"
)

var errPhotoPending = errors.New("photo still processing")

// InsertPhoto stores photo as the display photo of raw contact id.
//
// The bytes must decode as a JPEG, PNG or GIF image; otherwise
// ErrInvalidImage is returned and nothing is written. After the write the
// provider is polled until the processed photo is published, then the dirty
// flag set by processing is cleared. If the photo is not published within
// the polling budget the error wraps ErrPhotoTimeout; the photo itself has
// been written and may still be processed later.
func (s *Syncer) InsertPhoto(ctx context.Context, id int64, photo []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(photo))
	if err != nil {
		return fmt.Errorf("insert photo for %d: %w: %v", id, ErrInvalidImage, err)
	}

	addr := row.DisplayPhotoAddress(id)
	if err := s.backend.WriteAsset(ctx, addr, photo); err != nil {
		return fmt.Errorf("insert photo for %d: %w", id, err)
	}
	s.logger.Debug("photo written",
		"id", id,
		"format", format,
		"width", cfg.Width,
		"height", cfg.Height,
		"bytes", len(photo))

	derived, attempts, err := s.awaitPhoto(ctx, addr)
	if err != nil {
		return fmt.Errorf("insert photo for %d: %w", id, err)
	}

	b := s.newBatch()
	b.Enqueue(row.NewUpdate(row.TableRawContacts).
		With(row.ColDirty, row.Bool(false)).
		Where(row.ColID+" = ?", row.Int(id)))
	if _, err := b.Commit(ctx); err != nil {
		return fmt.Errorf("insert photo for %d: clear dirty flag: %w", id, err)
	}

	s.logger.Debug("photo published", "id", id, "address", derived, "attempts", attempts)
	return nil
}

// awaitPhoto polls the asset store until addr has a derived address.
func (s *Syncer) awaitPhoto(ctx context.Context, addr string) (string, int, error) {
	var derived string
	attempts := 0

	backoff := retry.WithMaxRetries(uint64(s.photoAttempts-1), retry.NewConstant(s.photoInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		d, ok, err := s.backend.DerivedAddress(ctx, addr)
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errPhotoPending)
		}
		derived = d
		return nil
	})
	if errors.Is(err, errPhotoPending) {
		return "", attempts, fmt.Errorf("%s after %d attempts: %w", addr, attempts, ErrPhotoTimeout)
	}
	if err != nil {
		return "", attempts, err
	}
	return derived, attempts, nil
}
