// Package analyze orchestrates vision-model calls: prompt construction,
// response parsing, ensemble merging, caching, history persistence and batch
// parallelism.
package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/YuujiKamura/tonsuu-checker/internal/estimate"
)

// maxExcerptRunes bounds the raw-response excerpt embedded in parse
// diagnostics.
const maxExcerptRunes = 500

// ExtractJSON pulls the JSON payload out of a model response. Handles plain
// JSON, fenced code blocks (tagged or not) and JSON embedded in prose; falls
// back to the trimmed text verbatim.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		if end := strings.LastIndex(response, "```"); end > 0 {
			start := strings.IndexByte(response, '\n')
			if start < 0 {
				start = len("```")
			} else {
				start++
			}
			if start < end {
				return strings.TrimSpace(response[start:end])
			}
		}
	}

	if start := strings.IndexByte(response, '{'); start >= 0 {
		if end := strings.LastIndexByte(response, '}'); end > start {
			return response[start : end+1]
		}
	}

	return response
}

// ParseResponse deserializes a model response into an EstimationResult. It
// never fails: a malformed response is downgraded to an undetected result
// carrying the parse error and a bounded excerpt in its reasoning, so one bad
// sample cannot abort an ensemble or batch. When the parsed result has no
// volume or tonnage, the geometric estimator fills them from whatever
// parameters are present.
func ParseResponse(response string) *estimate.EstimationResult {
	jsonStr := ExtractJSON(response)

	var result estimate.EstimationResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		excerpt := []rune(response)
		if len(excerpt) > maxExcerptRunes {
			excerpt = excerpt[:maxExcerptRunes]
		}
		return &estimate.EstimationResult{
			Reasoning: fmt.Sprintf("[parse_error] %v | raw: %s", err, string(excerpt)),
		}
	}

	if result.EstimatedVolumeM3 == 0 || result.EstimatedTonnage == 0 {
		estimate.ApplyGeometry(&result)
	}

	return &result
}
