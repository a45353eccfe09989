// Package ui provides the Bubble Tea terminal interface for the gallery.
//
// # Package Structure
//
//   - ui.go: Model, message handling, commands and Run
//   - gallery.go: header, image list and footer rendering
//   - viewer.go: modal showing one image and its original URL
//   - uploadform.go: modal for picking a file and entering title and description
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go: color palettes and Lipgloss styles
//
// # Data Flow
//
// The model never mutates the cache directly. A tick reads a copy of the
// query from the state.Store; when the query is idle the model issues
// Paginator.Start as a tea.Cmd. Load more and retry are commands too, and
// their completion triggers another snapshot read.
//
// Uploads run form.Submitter.Submit in a command. The create-image mutation
// invalidates the images key, so the next snapshot is idle and the list is
// refetched from the first page.
//
// # States
//
//   - idle or loading with no items: spinner
//   - error: page-level error and a retry hint, no partial content
//   - success: the list; a failed load more keeps the items and shows a
//     transient error line in the footer
//
// # Key Bindings
//
//	j/k      move          enter  view image
//	m        load more     r      retry after an error
//	u        upload        d      toggle descriptions
//	T        cycle theme   h/?    help
//	e        quit
//
// Theme and description visibility are saved to the prefs file.
package ui
