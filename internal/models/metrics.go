package models

// Metrics is the state of the places backend as reported by GET /metrics.
type Metrics struct {
	PageSize     int    `json:"pageSize"`
	CandidateMax int    `json:"candidateMax"`
	LevMinimum   int    `json:"levMinimum"`
	DistanceCut  int    `json:"distanceCut"`
	CacheTTL     string `json:"cacheTTL"`

	StreetCount      int `json:"streetCount"`
	LocationCount    int `json:"locationCount"`
	HouseNumberCount int `json:"houseNumberCount"`

	QueryCount    uint64       `json:"queryCount"`
	AvgLookupTime string       `json:"avgLookupTime"`
	Cache         CacheMetrics `json:"cacheMetrics"`
}

// CacheMetrics summarizes the completion cache.
type CacheMetrics struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Ratio       float64 `json:"ratio"`
	KeysAdded   uint64  `json:"keysAdded"`
	KeysEvicted uint64  `json:"keysEvicted"`
}
