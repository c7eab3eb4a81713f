// Package provider is a SQLite-backed contacts content provider.
//
// It plays the store side of the contact write path:
//   - Apply executes a list of row operations in one SQL transaction and
//     rejects calls whose serialized size exceeds the configured payload
//     limit (the IPC cap of a real provider)
//   - RawContact and DataRows serve the read path
//   - WriteAsset and DerivedAddress implement the photo asset store: photo
//     bytes are processed asynchronously into a photo data row, after which
//     the raw contact is flagged dirty
//
// # Tables
//
//   - raw_contacts: one row per contact (source_id, starred, dirty, deleted)
//   - data: typed data rows (mimetype, data1..data15, photo_file_id),
//     deleted with their raw contact
//   - photo_files: photo bytes as written through WriteAsset
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package provider
