package writers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteMatrix writes intersection sizes as TSV: a header of reference
// lineages, then one row per query.
func WriteMatrix(w io.Writer, queries, lineages []string, rows [][]uint32) error {
	if len(rows) != len(queries) {
		return fmt.Errorf("matrix has %d rows for %d queries", len(rows), len(queries))
	}
	bw := bufio.NewWriter(w)
	bw.WriteString("query")
	for _, l := range lineages {
		bw.WriteByte('\t')
		bw.WriteString(l)
	}
	bw.WriteByte('\n')
	for i, row := range rows {
		if len(row) != len(lineages) {
			return fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), len(lineages))
		}
		bw.WriteString(queries[i])
		for _, v := range row {
			bw.WriteByte('\t')
			bw.WriteString(strconv.FormatUint(uint64(v), 10))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
