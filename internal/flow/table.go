package flow

import (
	"fmt"
	"strings"
)

// Table renders flows one per line in rank order:
//
//	1. Home to Cart [42]: t1 -> t2
func Table(flows []Flow) string {
	var b strings.Builder
	for i, f := range flows {
		fmt.Fprintf(&b, "%d. %s [%d]: %s\n", i+1, f.Name, f.Frequency, strings.Join(f.IDs(), " -> "))
	}
	return b.String()
}
