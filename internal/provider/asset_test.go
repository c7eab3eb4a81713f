package provider

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/contactsync/internal/row"
)

func createRawContact(t *testing.T, p *Provider) int64 {
	t.Helper()

	results, err := p.Apply(context.Background(), insertContactOps("uid-1"))
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	return results[0].ID
}

func TestWriteAsset_ProcessesSynchronously(t *testing.T) {
	p := openTest(t)
	ctx := context.Background()
	id := createRawContact(t, p)
	addr := row.DisplayPhotoAddress(id)

	if err := p.WriteAsset(ctx, addr, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteAsset() failed: %v", err)
	}

	derived, ok, err := p.DerivedAddress(ctx, addr)
	if err != nil || !ok {
		t.Fatalf("DerivedAddress() = %q, %v, %v", derived, ok, err)
	}
	if derived != "display_photo/1" {
		t.Errorf("derived = %q, want display_photo/1", derived)
	}

	raw, _, err := p.RawContact(ctx, id)
	if err != nil {
		t.Fatalf("RawContact() failed: %v", err)
	}
	if dirty, _ := raw.Int(row.ColDirty); dirty != 1 {
		t.Errorf("dirty = %d, want 1", dirty)
	}

	rows, err := p.DataRows(ctx, id)
	if err != nil {
		t.Fatalf("DataRows() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if b, _ := rows[0].Bytes(row.ColData15); len(b) != 3 {
		t.Errorf("data15 = %v, want 3 bytes", b)
	}
}

func TestWriteAsset_ReplacesPreviousPhoto(t *testing.T) {
	p := openTest(t)
	ctx := context.Background()
	id := createRawContact(t, p)
	addr := row.DisplayPhotoAddress(id)

	for _, data := range [][]byte{{1}, {2}} {
		if err := p.WriteAsset(ctx, addr, data); err != nil {
			t.Fatalf("WriteAsset() failed: %v", err)
		}
	}

	rows, err := p.DataRows(ctx, id)
	if err != nil {
		t.Fatalf("DataRows() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if b, _ := rows[0].Bytes(row.ColData15); len(b) != 1 || b[0] != 2 {
		t.Errorf("data15 = %v, want [2]", b)
	}
	derived, _, _ := p.DerivedAddress(ctx, addr)
	if derived != "display_photo/2" {
		t.Errorf("derived = %q, want display_photo/2", derived)
	}
}

func TestWriteAsset_ProcessesAsynchronously(t *testing.T) {
	p := openTest(t, WithPhotoProcessDelay(50*time.Millisecond))
	ctx := context.Background()
	id := createRawContact(t, p)
	addr := row.DisplayPhotoAddress(id)

	if err := p.WriteAsset(ctx, addr, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteAsset() failed: %v", err)
	}

	if _, ok, err := p.DerivedAddress(ctx, addr); err != nil || ok {
		t.Fatalf("DerivedAddress() before processing = %v, %v; want not found", ok, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, ok, err := p.DerivedAddress(ctx, addr)
		if err != nil {
			t.Fatalf("DerivedAddress() failed: %v", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("photo was never processed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClose_WaitsForPendingPhotos(t *testing.T) {
	p := openTest(t, WithPhotoProcessDelay(20*time.Millisecond))
	id := createRawContact(t, p)

	if err := p.WriteAsset(context.Background(), row.DisplayPhotoAddress(id), []byte{9}); err != nil {
		t.Fatalf("WriteAsset() failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
}

func TestWriteAsset_Errors(t *testing.T) {
	p := openTest(t)
	ctx := context.Background()

	if err := p.WriteAsset(ctx, "not/an/address", []byte{1}); err == nil {
		t.Error("expected error for malformed address")
	}
	if err := p.WriteAsset(ctx, row.DisplayPhotoAddress(77), []byte{1}); err == nil {
		t.Error("expected error for unknown raw contact")
	}
	id := createRawContact(t, p)
	if err := p.WriteAsset(ctx, row.DisplayPhotoAddress(id), nil); err == nil {
		t.Error("expected error for empty data")
	}
}
