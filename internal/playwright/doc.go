// Package playwright emits Playwright Test sources from a spec.
//
// A generated file holds one describe block named after the spec with a
// beforeEach hook that opens the base URL. Tests are either one per
// extracted flow or one per transition; in the latter mode each test first
// replays the shortest path to the transition's source state.
//
// Every event lowers to one statement. Event kinds the emitter does not
// model become marked comments so the rest of the file stays usable.
package playwright
