// Package config loads the gallery client's configuration.
//
// # Resolution
//
//  1. The file given by --config, or ~/.config/gallery/config.toml.
//  2. A missing file is not an error; built-in defaults apply.
//  3. GALLERY_* environment variables override file values.
//  4. Blank or zero values fall back to defaults.
//
// # TOML Format
//
//	api_bind = "127.0.0.1:3000"
//	upload_endpoint = "http://127.0.0.1:3000/api/upload"
//	upload_key = ""
//	log_file = "~/.local/state/gallery/gallery.log"
//	log_level = "info"
//
//	[limits]
//	max_image_bytes = 100000
//	title_min = 3
//	title_max = 10
//	description_max = 10
//
// # Environment
//
//   - GALLERY_API_BIND
//   - GALLERY_UPLOAD_ENDPOINT
//   - GALLERY_UPLOAD_KEY
//   - GALLERY_LOG_FILE
//   - GALLERY_LOG_LEVEL
//
// The limits are the form validation thresholds. max_image_bytes defaults to
// 100000 bytes, which is what the gallery has always enforced; raise it in the
// file when larger images are expected.
//
// Tilde expansion applies to the config path and log_file.
package config
