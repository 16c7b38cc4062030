// Package app is the composition root of whisker.
//
// # Overview
//
// Run loads configuration, opens the log file, builds the fetch pipeline and
// hands everything to the TUI. Nothing here holds domain logic; the pieces
// live in catapi, cache, loader, state, collection and favorites.
//
// # Startup Order
//
//  1. config.Load reads ~/.config/whisker/config.toml (defaults when missing)
//  2. logging.New opens the JSON log file the log view tails
//  3. prefs.Load restores theme, page size and breed filter
//  4. catapi.NewClient, the picture cache and the loader group are created
//  5. The collection controller and the picture slots are wired to a ui.Bridge
//  6. The favorites book is opened on the file or Redis backend
//  7. The refresh scheduler starts when refresh_schedule is set
//  8. The first LoadAll is issued and ui.Run blocks until exit
//
// Shutdown runs in reverse: the scheduler stops, slots and loaders are
// closed so in-flight requests are cancelled, and the log file is flushed.
//
// # Components
//
//   - app.go: Run, favorites backend selection, page size resolution
//   - scheduler.go: cron driven background refresh of the collection
//
// # Errors
//
// Configuration, logging and client setup errors abort startup. An
// unreachable Redis backend also aborts, since favorites would silently be
// lost otherwise. A favorites file that cannot be read, a failed list
// request or a failed scheduled refresh are logged and shown in the UI.
package app
