// Package maestro emits Maestro flow files from a spec.
//
// Each flow becomes a YAML stream of two documents: a config document
// carrying the app id, name and tags, and a command list that launches the
// app and replays the flow. An index file runs every flow in rank order.
// Single mode concatenates all flow streams into one output instead.
//
// Flows come from flow.Extract, so the ranking matches the Playwright
// emitter for the same spec.
package maestro
