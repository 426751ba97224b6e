package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// looseString decodes either a JSON string or a bare number. Models routinely
// emit "amount": 500 despite being asked for strings.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = looseString(num.String())
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", data)
}

// parseExtraction turns raw model output into an ExtractionResponse.
func parseExtraction(content string) (ExtractionResponse, error) {
	var jsonResp struct {
		Intent   string       `json:"intent"`
		Amount   *looseString `json:"amount"`
		Item     *looseString `json:"item"`
		Category *looseString `json:"category"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ExtractionResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if strings.TrimSpace(jsonResp.Intent) == "" {
		return ExtractionResponse{}, fmt.Errorf("no intent found in response")
	}

	return ExtractionResponse{
		Intent:   strings.TrimSpace(jsonResp.Intent),
		Amount:   fieldValue(jsonResp.Amount),
		Item:     fieldValue(jsonResp.Item),
		Category: fieldValue(jsonResp.Category),
	}, nil
}

// fieldValue trims a decoded field and drops blanks and literal "null"
// strings to nil.
func fieldValue(v *looseString) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(string(*v))
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// cleanMarkdownWrapper strips the ```json fences some models wrap around
// otherwise valid JSON replies.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
