package writers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"kmertax/internal/timing"
	"kmertax/pkg/api"
)

// WriteMetadata writes one "key: value" line per metadata field.
func WriteMetadata(w io.Writer, md timing.Metadata) error {
	bw := bufio.NewWriter(w)
	for _, kv := range md.Pairs() {
		var v string
		switch x := kv[1].(type) {
		case float64:
			v = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			v = strconv.FormatBool(x)
		default:
			v = fmt.Sprint(x)
		}
		if _, err := fmt.Fprintf(bw, "%s: %s\n", kv[0], v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// MetadataToAPI converts run metadata to its v1 wire form.
func MetadataToAPI(md timing.Metadata) api.MetadataV1 {
	return api.MetadataV1{
		RunID:                          md.RunID,
		ReferenceCount:                 md.ReferenceCount,
		QueryCount:                     md.QueryCount,
		K:                              md.K,
		Threads:                        md.Threads,
		IndexSkipped:                   md.IndexSkipped,
		ReferenceParseTime:             md.ReferenceParse.Seconds(),
		QueryParseTime:                 md.QueryParse.Seconds(),
		OrientQueriesTime:              md.OrientQueries.Seconds(),
		CalculateIntersectionSizesTime: md.Intersections.Seconds(),
		AverageReferenceProcessingTime: md.AvgReference.Seconds(),
		AverageProbCalculationTime:     md.AvgScoring.Seconds(),
	}
}

// WriteMetadataJSON writes the metadata as indented JSON.
func WriteMetadataJSON(w io.Writer, md timing.Metadata) error {
	return encodeIndented(w, MetadataToAPI(md))
}
