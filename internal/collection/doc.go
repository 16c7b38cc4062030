// Package collection manages the list of images on screen and the picture
// loaders behind the visible rows.
//
// Controller issues one bulk search per LoadAll, Refresh or Filter call.
// Success replaces the items wholesale; failure keeps the previous items and
// records the error, so a refresh never flashes the list to empty. A call made
// while another is in flight supersedes it.
//
// Slots creates a loader.Loader per observed item lazily and closes it when the
// item scrolls out of view.
//
// Observers of both run on the publishing goroutine and must not call back
// into the Controller or Slots.
package collection
