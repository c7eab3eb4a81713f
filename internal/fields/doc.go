// Package fields maps between contact fields and provider data rows.
//
// A Registry holds two independent strategy tables keyed by row type (the
// data row's mimetype):
//   - Readers turn one data row into contact fields. Several readers may
//     share a row type; all of them run, in registration order.
//   - Writers turn a whole contact into zero or more insert operations for
//     their row type. Exactly one writer may own a row type.
//
// Readers always see rows with blank columns removed and strings
// NFC-normalized, so "present but empty" and "absent" look the same.
//
// Default returns a registry with the built-in handlers for names,
// nicknames, organizations, phones, emails, postal addresses, websites,
// events, notes, photos and unknown vCard properties.
//
// A registry is populated once at startup. After that it is read-only and
// safe for concurrent use.
package fields
