// Package journal provides a SQLite-backed action journal for engine sessions.
//
// Every transition the engine applies is appended as one row: the session id,
// the logical seq of the transition, the action name, its arguments as
// canonical JSON, and the cart figures after the transition. The journal is
// a trace for diagnostics and replay checks within a session; the engine
// never restores state from it.
//
// # Ordering
//
//   - seq comes from the engine's logical clock, never from wall time
//   - reads are ORDER BY seq ASC so replay sees transitions in applied order
//   - (session, seq) is the primary key; rewriting a row is a no-op
//
// # Database Configuration
//
//   - WAL mode for file databases
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// The default path ":memory:" keeps the journal private to the process.
package journal
