// Package contacts writes contacts to and reads them from a contacts
// provider.
//
// A Syncer turns one Create, Update or Delete into a single txn.Batch: the
// raw contact row followed by the data rows the field registry builds for
// the contact. On update only the row types the registry owns are deleted
// and rebuilt; rows written by other agents are left alone.
//
// Photos do not travel in the batch. After the rows are committed the photo
// bytes are written to the provider's asset store, which processes them in
// the background. The Syncer polls until the processed photo is visible and
// then clears the dirty flag the provider sets while processing. A photo
// that is not an image, or that is not processed in time, is logged and
// does not fail the write.
package contacts
