// Package gallery provides the HTTP client for the image API.
//
// # Endpoints
//
//   - GET /api/images?after=<cursor>: one page of images, newest first.
//     The response is {"data": [...], "after": "<cursor>"|null}.
//   - POST /api/images: create an image record from {title, description, url}.
//
// A null or missing "after" marks the last page; it is folded into an empty
// Page.Cursor so callers only compare strings.
//
// # Errors
//
// Requests that never produce a response return *NetworkError. Any non-2xx
// status returns *ServerError. Malformed bodies return a wrapped decode error.
// The client never retries; retry policy belongs to the caller.
//
// # Testing
//
// API is the interface consumers should depend on. A gomock implementation
// lives in the mocks subpackage and is regenerated with go generate.
package gallery
