// Package spec defines the inferred state-machine model (GremlinSpec) that
// flow extraction and test generation consume.
//
// Key design constraints:
//   - Event, Predicate and Action are sealed interfaces; every consumer
//     matches them exhaustively
//   - Predicates and actions are immutable values compared structurally
//   - Unknown event and action kinds decode to placeholders, unknown
//     predicate kinds are malformed input
//   - Cross references (initialState, transition endpoints, id uniqueness)
//     are checked by Validate, not by the types
//   - Hash is computed over RFC 8785 canonical JSON with creation and update
//     stamps excluded
package spec
