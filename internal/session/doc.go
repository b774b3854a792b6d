// Package session defines the canonical recorded-session schema.
//
// A Session is what capture producers and format importers emit and what the
// codec and spec inference consume. It carries a header, an element
// dictionary, an ordered event stream and screenshot references.
//
// Key design constraints:
//   - Event order is temporal order; each event stores dt, the milliseconds
//     elapsed since the previous event
//   - Event payloads are a closed sum type (EventData) selected by the
//     integer discriminant on the wire; data.kind repeats it as a string tag
//   - Element indices in payloads must address the element dictionary
//   - All JSON tags use camelCase to match the external schema
package session
