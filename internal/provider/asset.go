package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/contactsync/internal/row"
)

// WriteAsset stores photo bytes written to a display photo address
// (see row.DisplayPhotoAddress) and schedules their processing.
//
// Processing replaces the raw contact's photo data row with one referencing
// the stored file and marks the raw contact dirty. It runs before WriteAsset
// returns unless a photo process delay is configured.
func (p *Provider) WriteAsset(ctx context.Context, addr string, data []byte) error {
	rawContactID, err := row.ParseDisplayPhotoAddress(addr)
	if err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("write asset %s: empty data", addr)
	}

	res, err := p.db.ExecContext(ctx, `
		INSERT INTO photo_files (raw_contact_id, data) VALUES (?, ?)
	`, rawContactID, data)
	if err != nil {
		return fmt.Errorf("write asset %s: %w", addr, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("write asset %s: last insert id: %w", addr, err)
	}

	if p.photoProcessDelay <= 0 {
		if err := p.processPhoto(context.WithoutCancel(ctx), rawContactID, fileID); err != nil {
			return fmt.Errorf("write asset %s: %w", addr, err)
		}
		return nil
	}

	p.background(p.photoProcessDelay, func() {
		if err := p.processPhoto(context.Background(), rawContactID, fileID); err != nil {
			p.logger.Warn("photo processing failed",
				"raw_contact_id", rawContactID,
				"file_id", fileID,
				"error", err)
		}
	})
	return nil
}

// processPhoto publishes a stored photo file as the raw contact's photo row.
func (p *Provider) processPhoto(ctx context.Context, rawContactID, fileID int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("process photo: begin: %w", err)
	}
	defer tx.Rollback()

	var data []byte
	if err := tx.QueryRowContext(ctx, `
		SELECT data FROM photo_files WHERE _id = ?
	`, fileID).Scan(&data); err != nil {
		return fmt.Errorf("process photo: load file %d: %w", fileID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM data WHERE raw_contact_id = ? AND mimetype = ?
	`, rawContactID, row.MimePhoto); err != nil {
		return fmt.Errorf("process photo: delete old row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO data (raw_contact_id, mimetype, is_primary, photo_file_id, data15)
		VALUES (?, ?, 1, ?, ?)
	`, rawContactID, row.MimePhoto, fileID, data); err != nil {
		return fmt.Errorf("process photo: insert row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE raw_contacts SET dirty = 1 WHERE _id = ?
	`, rawContactID); err != nil {
		return fmt.Errorf("process photo: mark dirty: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("process photo: commit: %w", err)
	}

	p.logger.Debug("photo processed", "raw_contact_id", rawContactID, "file_id", fileID)
	return nil
}

// DerivedAddress returns the address a processed display photo is published
// at. The bool is false while the photo has not been processed yet.
func (p *Provider) DerivedAddress(ctx context.Context, addr string) (string, bool, error) {
	rawContactID, err := row.ParseDisplayPhotoAddress(addr)
	if err != nil {
		return "", false, fmt.Errorf("derived address: %w", err)
	}

	var fileID int64
	err = p.db.QueryRowContext(ctx, `
		SELECT photo_file_id FROM data
		WHERE raw_contact_id = ? AND mimetype = ? AND photo_file_id IS NOT NULL
		ORDER BY _id DESC
		LIMIT 1
	`, rawContactID, row.MimePhoto).Scan(&fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("derived address of %s: %w", addr, err)
	}
	return row.DerivedPhotoAddress(fileID), true, nil
}
