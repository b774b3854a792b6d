// Package store is the local SQLite archive of recorded sessions, specs
// and generated artifacts.
//
// Sessions are kept in their compressed wire form and keyed by the
// session id of their header, so archiving the same recording twice is a
// no-op. Specs are content addressed by spec.Hash. Artifacts belong to a
// spec and are unique per (spec, kind, path); writing one again replaces
// its content.
//
// # Ordering
//
// Every table carries a seq column assigned on insert. Listings are
// ordered by seq ASC, then id ASC COLLATE BINARY, so results do not
// depend on wall-clock time.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability and performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: artifacts must reference an archived spec
package store
