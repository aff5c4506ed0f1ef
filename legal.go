package subsume

import _ "embed"

// cspell:words gogenlicense

//go:generate go tool gogenlicense -m -t 0.5

//go:embed LICENSE
var License string

// LegalText returns legal text to be included in human-readable output using subsume.
func LegalText() string {
	return `
================================================================================
Subsume - A Sub-Graph Isomorphism Index
================================================================================
` + License + "\n" + ""
}
