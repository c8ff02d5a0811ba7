// Package formatting normalizes model output before it reaches the domain.
package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed means the completion held no decodable JSON object.
var ErrParseFailed = errors.New("failed to parse response")

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes a chat completion into T. Models often wrap the object in a
// markdown fence, so the first fenced block is tried when the bare text does
// not decode.
func Parse[T any](content string) (T, error) {
	var out T
	content = strings.TrimSpace(content)

	if json.Unmarshal([]byte(content), &out) == nil {
		return out, nil
	}
	if m := fencedJSON.FindStringSubmatch(content); len(m) == 2 {
		out = *new(T)
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), &out) == nil {
			return out, nil
		}
	}

	return *new(T), fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 200))
}
