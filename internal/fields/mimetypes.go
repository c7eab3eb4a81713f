package fields

import "github.com/roach88/contactsync/internal/row"

// Row types handled by the default registry.
const (
	MimeStructuredName    = "vnd.android.cursor.item/name"
	MimeNickname          = "vnd.android.cursor.item/nickname"
	MimeOrganization      = "vnd.android.cursor.item/organization"
	MimePhone             = "vnd.android.cursor.item/phone_v2"
	MimeEmail             = "vnd.android.cursor.item/email_v2"
	MimeStructuredPostal  = "vnd.android.cursor.item/postal-address_v2"
	MimeWebsite           = "vnd.android.cursor.item/website"
	MimeEvent             = "vnd.android.cursor.item/contact_event"
	MimeNote              = "vnd.android.cursor.item/note"
	MimePhoto             = row.MimePhoto
	MimeUnknownProperties = "x.contactsync/unknown-properties"
)

// Group membership rows are managed outside this package; their type is
// listed so callers can recognize it.
const MimeGroupMembership = "vnd.android.cursor.item/group_membership"

// Shared data columns of labeled rows.
const (
	colValue = "data1"
	colType  = "data2"
	colLabel = "data3"
)

// typeCustom is the type code meaning "see the label column".
const typeCustom int64 = 0
