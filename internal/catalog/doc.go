// Package catalog scans a photo directory into an in-memory record
// list.
//
// A scan walks the tree, keeps files with a recognized image
// extension, collapses raw/JPEG sibling pairs into one record (raw
// preferred), and sorts the survivors newest first. Scans run off the
// caller's goroutine and replace the published record list atomically;
// per-entry filesystem errors are skipped, never fatal.
package catalog
