// Package loader fetches remote resources for UI slots.
//
// A Group is shared by every Loader of one resource type. It owns the
// resource cache reference, the in-flight flights and their interest counts.
// A Loader belongs to one slot and publishes that slot's lifecycle through a
// state.Machine.
//
// Loading a key goes through these steps:
//
//  1. cache hit: Loaded is published synchronously and nothing is fetched;
//  2. miss: Loading is published, a Handle is created and joins the key's
//     flight, starting one if none is running;
//  3. success: the flight writes the cache once, provided some handle is
//     still interested, and each live handle publishes Loaded;
//  4. failure: each live handle publishes Failed.
//
// Concurrent loads of the same uncached key share one flight (x/sync
// singleflight). Loading the key a loader is already fetching is a no-op and
// loading a different key cancels the previous handle first. Cancellation is
// cooperative: the request may complete, but a cancelled handle never
// publishes and a flight with no interested handle never writes the cache.
package loader
