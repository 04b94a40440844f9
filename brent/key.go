package brent

import "encoding/json"

// CacheKey derives the deterministic cache key for an endpoint and its query
// parameters. encoding/json marshals maps with sorted keys, so semantically
// identical parameter sets collide on the same key regardless of insertion
// order.
func CacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	bs, err := json.Marshal(params)
	if err != nil {
		// map[string]string cannot fail to marshal
		return endpoint
	}
	return endpoint + "?" + string(bs)
}
