package fasta

import "strings"

// TaxSeparator splits a reference record name from its lineage.
const TaxSeparator = ";tax="

// Lineage returns the taxonomic label of a reference record: the text after
// the first ";tax=" in its ID (up to a second one, if any), or the whole ID
// when there is no marker.
func Lineage(id string) string {
	parts := strings.SplitN(id, TaxSeparator, 3)
	if len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}
