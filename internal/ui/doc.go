// Package ui provides the Bubble Tea terminal interface for whisker.
//
// # Architecture Overview
//
// Model is a single Bubble Tea model with two views: a browse view listing
// the current page of cats next to a detail pane, and a log view tailing
// whisker's own log file. The UI never performs network I/O on its own
// goroutine; it drives the collection controller and the per-item slots and
// renders whatever state they publish.
//
// # Package Structure
//
//   - app.go: Model, Options, Update/View and Run
//   - bridge.go: unbounded notification channel from pipeline observers to the program
//   - browse.go: list pane, row glyphs and the titled box frame
//   - detail.go: picture preview and breed metadata for the selected cat
//   - preview.go: half-block image rendering with nearest-neighbour sampling
//   - header.go: status bar and command bar
//   - logs.go: log viewport, level colors and search
//   - help.go, keys.go: key map and help overlay
//   - theme.go, style_helpers.go: palettes and background-safe rendering
//
// # Event Flow
//
//  1. Run creates the program and starts Bridge.pump, which forwards
//     notifications with Program.Send.
//  2. Controller and loader observers push listChangedMsg and
//     pictureChangedMsg into the bridge; the send never blocks the publisher.
//  3. On a list change the model re-reads the controller snapshot and makes
//     the visible rows the observed set, so only on-screen pictures load.
//  4. Keys call the controller (refresh, filter, page size) or the slots
//     (retry); results arrive later as notifications.
//
// # Key Bindings
//
//   - j/k, g/G, pgup/pgdown: Move the selection
//   - r: Refresh the list with the same query
//   - R: Retry the selected picture
//   - f: Toggle favorite
//   - /: Cycle breed filter (browse) or search (logs)
//   - +/-: Change page size
//   - C: Clear the image cache
//   - l/b/tab: Log view / browse view / switch
//   - T: Cycle theme
//   - h or ?: Help
//   - e or Ctrl+C: Exit
package ui
