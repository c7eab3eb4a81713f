package testutil

import (
	"context"
	"sync"

	"github.com/roach88/contactsync/internal/row"
)

// AssetStore is an in-memory asset store with scripted processing delay.
//
// A written asset stays pending for ReadyAfter DerivedAddress queries and is
// reported on the next one. A negative ReadyAfter keeps it pending forever.
type AssetStore struct {
	ReadyAfter int

	// WriteErr, when set, fails every WriteAsset call.
	WriteErr error

	// OnQuery, when set, is called with the 1-based attempt number before
	// each DerivedAddress query is answered.
	OnQuery func(attempt int)

	mu      sync.Mutex
	files   *Sequence
	written map[string][]byte
	derived map[string]string
	queries int
}

// NewAssetStore creates a store whose assets are visible on the first query.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		files:   NewSequence(1),
		written: make(map[string][]byte),
		derived: make(map[string]string),
	}
}

// WriteAsset records data under addr.
func (a *AssetStore) WriteAsset(ctx context.Context, addr string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.WriteErr != nil {
		return a.WriteErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	a.written[addr] = cp
	a.derived[addr] = row.DerivedPhotoAddress(a.files.Next())
	return nil
}

// DerivedAddress reports the derived address of addr once it is ready.
func (a *AssetStore) DerivedAddress(ctx context.Context, addr string) (string, bool, error) {
	a.mu.Lock()
	a.queries++
	attempt := a.queries
	hook := a.OnQuery
	a.mu.Unlock()

	if hook != nil {
		hook(attempt)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	derived, ok := a.derived[addr]
	if !ok || a.ReadyAfter < 0 || attempt <= a.ReadyAfter {
		return "", false, nil
	}
	return derived, true, nil
}

// Written returns the bytes last written to addr.
func (a *AssetStore) Written(addr string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.written[addr]
	return data, ok
}

// Queries returns the number of DerivedAddress calls so far.
func (a *AssetStore) Queries() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.queries
}
