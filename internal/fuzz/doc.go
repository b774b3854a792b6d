// Package fuzz generates adversarial tests from a spec.
//
// Six strategies (random walks, hostile input, mutated common flows, back
// button abuse, rapid repeats and direct state access) draw from one
// seeded linear congruential generator per call, so a spec, a seed and a
// strategy list always produce the same tests. GenerateFuzzSuite lowers
// tests to a Playwright file through the emitter's event lowering.
package fuzz
