// Package logtail reads the tail of the gallery log file and renders its
// records for humans.
//
// Read keeps a ring buffer of maxLines so memory stays bounded regardless of
// file size. A missing file yields no lines.
//
// The logging package writes one JSON object per line. Parse pulls out the
// time, level and message keys and keeps the rest as fields; lines that are
// not JSON pass through untouched. Format renders an entry as
//
//	2026-03-01 10:00:00 INFO  page loaded items=6 key=images
//
// with extra fields sorted by key.
package logtail
