package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth gives the detail pane a larger share.
	LayoutExtraWideWidth = 160

	// LayoutMinPreviewHeight is the minimum number of rows kept for the image preview.
	LayoutMinPreviewHeight = 6
)

// Log display limits.
const (
	// LogTailLimit is the number of log entries read from the end of the log file.
	LogTailLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the header clock and log follow interval.
	DefaultUIInterval = time.Second

	// FavoriteSaveTimeout bounds one favorites store write.
	FavoriteSaveTimeout = 5 * time.Second

	// BreedFetchTimeout bounds the breed list request made at startup.
	BreedFetchTimeout = 20 * time.Second
)

// Page size adjustments made by the +/- keys.
const (
	PageStep    = 5
	MinPageSize = 1
	MaxPageSize = 100
)
