// Package app is the composition root for the gallery client.
//
// Bootstrap loads configuration and preferences, opens the log file and wires
// the object graph:
//
//	config.Load ──> logging.New
//	            ──> gallery.NewClient ──> query.Paginator (key "images")
//	            ──> upload.HTTPStorer ──> upload.CachingStorer
//	state.Store <── query.Mutation (create image, invalidates "images")
//	form.Submitter (rules from [limits], storer, mutation)
//
// Run then starts two goroutines under an errgroup: the revalidator, which
// starts idle queries on a ticker, and the Bubble Tea UI. Quitting the UI
// cancels the group.
//
// Only configuration and wiring errors are fatal. Fetch failures surface in
// the UI and the log; queries in error wait for an explicit retry.
//
// CLI subcommands reuse Bootstrap so they share configuration and logging
// with the TUI.
package app
