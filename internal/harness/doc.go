// Package harness runs generation scenarios for gremlin.
//
// A scenario is a YAML file that names a spec document, a target and the
// options to generate it with, followed by assertions over the result:
//
//	name: shop-playwright
//	description: storefront flows lower to Playwright
//	spec: ../specs/shop.json
//	target: playwright
//	options:
//	  group_by: flow
//	assertions:
//	  - type: contains
//	    text: "getByTestId('add-to-cart')"
//	  - type: flow_count
//	    count: 9
//
// Targets are flows, graph, playwright, maestro and fuzz. Every run loads
// the spec, extracts its flows, verifies its properties and generates the
// target's artifacts. Artifacts are archived in a fresh in-memory store and
// read back from it, so a scenario also exercises the archive.
//
// RunWithGolden compares a text snapshot of the artifacts against
// testdata/golden/<scenario>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
