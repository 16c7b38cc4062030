// Package favorites persists the user's saved cats.
//
// A Book holds the list in memory and writes the whole list through a Store
// after every change. Two stores exist: FileStore writes a TOML file and
// RedisStore keeps a JSON blob under a single key. Fetched image bytes are
// never stored here, only identifiers and URLs.
package favorites
