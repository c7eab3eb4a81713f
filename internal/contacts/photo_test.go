package contacts_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/contacts"
	"github.com/roach88/contactsync/internal/provider"
	"github.com/roach88/contactsync/internal/row"
)

func TestInsertPhoto_ClearsDirtyOnceAfterThirdAttempt(t *testing.T) {
	backend := newFakeBackend()
	backend.ReadyAfter = 2

	// Transport calls seen at each poll attempt.
	var callsAtAttempt []int
	backend.OnQuery = func(int) {
		callsAtAttempt = append(callsAtAttempt, len(backend.Calls()))
	}

	s := newSyncer(backend)
	require.NoError(t, s.InsertPhoto(context.Background(), 7, pngBytes(t)))

	assert.Equal(t, 3, backend.Queries())
	assert.Equal(t, []int{0, 0, 0}, callsAtAttempt, "no flag update before the photo is visible")

	written, ok := backend.Written(row.DisplayPhotoAddress(7))
	require.True(t, ok)
	assert.Equal(t, pngBytes(t), written)

	calls := backend.Calls()
	require.Len(t, calls, 1, "flag cleared exactly once")
	require.Len(t, calls[0], 1)
	update := calls[0][0]
	assert.Equal(t, row.Update, update.Kind)
	assert.Equal(t, row.TableRawContacts, update.Table)
	dirty, _ := update.Values.Get(row.ColDirty)
	assert.Equal(t, row.Bool(false), dirty)
	assert.Equal(t, []row.Value{row.Int(7)}, update.SelectionArgs)
}

func TestInsertPhoto_TimesOutWithoutClearingFlag(t *testing.T) {
	backend := newFakeBackend()
	backend.ReadyAfter = -1
	s := newSyncer(backend, contacts.WithPhotoPolling(5, time.Millisecond))

	err := s.InsertPhoto(context.Background(), 7, pngBytes(t))
	require.ErrorIs(t, err, contacts.ErrPhotoTimeout)

	assert.Equal(t, 5, backend.Queries())
	assert.Empty(t, backend.Calls())
}

func TestInsertPhoto_RejectsNonImage(t *testing.T) {
	backend := newFakeBackend()
	s := newSyncer(backend)

	err := s.InsertPhoto(context.Background(), 7, []byte("definitely not a jpeg"))
	require.ErrorIs(t, err, contacts.ErrInvalidImage)

	_, written := backend.Written(row.DisplayPhotoAddress(7))
	assert.False(t, written, "nothing written for an invalid image")
	assert.Zero(t, backend.Queries())
}

func TestInsertPhoto_WriteFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.WriteErr = assert.AnError
	s := newSyncer(backend)

	err := s.InsertPhoto(context.Background(), 7, pngBytes(t))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, backend.Queries())
}

func TestInsertPhoto_StopsOnCancel(t *testing.T) {
	backend := newFakeBackend()
	backend.ReadyAfter = -1
	s := newSyncer(backend, contacts.WithPhotoPolling(1000, 10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	backend.OnQuery = func(attempt int) {
		if attempt == 2 {
			cancel()
		}
	}

	err := s.InsertPhoto(ctx, 7, pngBytes(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, backend.Queries(), 5)
}

func TestCreate_PhotoProblemsAreWarnings(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tests := []struct {
		name       string
		readyAfter int
		photo      []byte
		wantLog    string
	}{
		{"invalid image", 0, []byte{0x00, 0x01}, "photo not stored"},
		{"processing timeout", -1, nil, "photo processing timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			backend := newFakeBackend()
			backend.ReadyAfter = tt.readyAfter
			s := newSyncer(backend,
				contacts.WithLogger(logger),
				contacts.WithPhotoPolling(3, time.Millisecond))

			photo := tt.photo
			if photo == nil {
				photo = pngBytes(t)
			}
			id, err := s.Create(context.Background(), &contact.Contact{Note: "n", Photo: photo})
			require.NoError(t, err)
			assert.Equal(t, int64(1000), id)
			assert.Contains(t, logs.String(), tt.wantLog)
			assert.Len(t, backend.Calls(), 1, "only the row batch was sent")
		})
	}
}

func TestCreate_WaitsForAsyncPhotoProcessing(t *testing.T) {
	ctx := context.Background()
	p := openProvider(t, provider.WithPhotoProcessDelay(30*time.Millisecond))
	s := newSyncer(p, contacts.WithPhotoPolling(500, 5*time.Millisecond))

	id, err := s.Create(ctx, &contact.Contact{Note: "async", Photo: pngBytes(t)})
	require.NoError(t, err)

	derived, ok, err := p.DerivedAddress(ctx, row.DisplayPhotoAddress(id))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "display_photo/1", derived)

	raw, _, err := p.RawContact(ctx, id)
	require.NoError(t, err)
	dirty, _ := raw.Int(row.ColDirty)
	assert.Zero(t, dirty)
}
