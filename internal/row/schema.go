package row

import (
	"fmt"
	"strconv"
	"strings"
)

// Provider tables.
const (
	TableRawContacts = "raw_contacts"
	TableData        = "data"
)

// raw_contacts columns.
const (
	ColID       = "_id"
	ColSourceID = "source_id"
	ColStarred  = "starred"
	ColDirty    = "dirty"
	ColDeleted  = "deleted"
)

// data columns. data1..data15 are generic; their meaning depends on the
// row's mimetype. data15 is conventionally a blob.
const (
	ColRawContactID = "raw_contact_id"
	ColMimeType     = "mimetype"
	ColIsPrimary    = "is_primary"
	ColPhotoFileID  = "photo_file_id"
	ColData15       = "data15"
)

// MimePhoto is the row type of processed photo rows. The provider writes
// these rows itself once a photo asset has been processed.
const MimePhoto = "vnd.android.cursor.item/photo"

// DataColumn returns the generic column dataN (1 <= n <= 15).
func DataColumn(n int) string {
	return "data" + strconv.Itoa(n)
}

const (
	displayPhotoSuffix = "/display_photo"
	displayPhotoPrefix = TableRawContacts + "/"
	derivedPhotoPrefix = "display_photo/"
)

// DisplayPhotoAddress is the asset address full-size photo bytes for a raw
// contact are written to.
func DisplayPhotoAddress(rawContactID int64) string {
	return displayPhotoPrefix + strconv.FormatInt(rawContactID, 10) + displayPhotoSuffix
}

// ParseDisplayPhotoAddress extracts the raw contact id from an address built
// by DisplayPhotoAddress.
func ParseDisplayPhotoAddress(addr string) (int64, error) {
	if !strings.HasPrefix(addr, displayPhotoPrefix) || !strings.HasSuffix(addr, displayPhotoSuffix) {
		return 0, fmt.Errorf("not a display photo address: %q", addr)
	}
	idStr := strings.TrimSuffix(strings.TrimPrefix(addr, displayPhotoPrefix), displayPhotoSuffix)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid raw contact id in %q", addr)
	}
	return id, nil
}

// DerivedPhotoAddress is the address a processed photo file is published at.
func DerivedPhotoAddress(fileID int64) string {
	return derivedPhotoPrefix + strconv.FormatInt(fileID, 10)
}
