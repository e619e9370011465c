// pkg/api/classification_v1.go
package api

// LabelScoreV1 is one ranked label.
type LabelScoreV1 struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassificationV1 is the stable JSON/JSONL schema for one classified query.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ClassificationV1 struct {
	Query      string         `json:"query"`
	KmerCount  int            `json:"n_kmers"`
	TopLabel   string         `json:"top_label"`
	TopScore   float64        `json:"top_score"`
	Classified bool           `json:"classified"`
	Ranking    []LabelScoreV1 `json:"ranking"`
	Flipped    bool           `json:"flipped,omitempty"`
}

// MetadataV1 is the JSON form of a run's metadata. Times are in seconds.
type MetadataV1 struct {
	RunID                          string  `json:"run_id"`
	ReferenceCount                 int     `json:"reference_count"`
	QueryCount                     int     `json:"query_count"`
	K                              int     `json:"k"`
	Threads                        int     `json:"threads"`
	IndexSkipped                   bool    `json:"index_skipped"`
	ReferenceParseTime             float64 `json:"reference_parse_time"`
	QueryParseTime                 float64 `json:"query_parse_time"`
	OrientQueriesTime              float64 `json:"orient_queries_time"`
	CalculateIntersectionSizesTime float64 `json:"calculate_intersection_sizes_time"`
	AverageReferenceProcessingTime float64 `json:"average_reference_processing_time"`
	AverageProbCalculationTime     float64 `json:"average_prob_calculation_time"`
}
