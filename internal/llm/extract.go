package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON means the model reply contained nothing that looks like JSON.
var ErrNoJSON = errors.New("no JSON payload found in model output")

var (
	fenceRe         = regexp.MustCompile("(?i)```json\\s*|```\\s*")
	objectRe        = regexp.MustCompile(`\{[\s\S]*\}`)
	arrayRe         = regexp.MustCompile(`\[[\s\S]*\]`)
	foodNameRe      = regexp.MustCompile(`"food_name"\s*:\s*"([^"]*)`)
	trailingCommaRe = regexp.MustCompile(`,(\s*})`)
	danglingCommaRe = regexp.MustCompile(`,\s*$`)
)

// requiredNutritionKeys are appended with defaults when a matched span was
// cut off before the model finished writing them.
var requiredNutritionKeys = []struct {
	key string
	val string
}{
	{"calories", "200"},
	{"protein", "10"},
	{"carbs", "30"},
	{"fats", "5"},
	{"sugar", "5"},
	{"portion_size", `"100g"`},
}

const truncatedFallbackName = "Món ăn không xác định"

// truncatedFallbackFormat is the stand-in emitted when the reply was cut off
// mid-object. Only the food name survives from the original text.
const truncatedFallbackFormat = `{
  "food_name": "%s",
  "portion_size": "1 tô (500g)",
  "calories": 450,
  "protein": 28,
  "carbs": 60,
  "fats": 10,
  "sugar": 3
}`

// StripFences removes Markdown code-fence markers around a model reply.
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// ExtractObject recovers a syntactically valid JSON object from free-form
// model output. The model is not guaranteed to emit well-formed JSON: replies
// get truncated at the output-token limit and occasionally arrive wrapped in
// prose, so this is defensive recovery rather than parsing.
func ExtractObject(text string) (string, error) {
	content := StripFences(text)

	// Output-length truncation leaves the braces unbalanced. Nothing beyond
	// the food name is trustworthy at that point. A reply with no opening
	// brace at all is prose, not a truncated object.
	if strings.Contains(content, "{") && strings.Count(content, "{") != strings.Count(content, "}") {
		name := truncatedFallbackName
		if m := foodNameRe.FindStringSubmatch(content); m != nil && m[1] != "" {
			name = m[1]
		}
		return fmt.Sprintf(truncatedFallbackFormat, name), nil
	}

	span := objectRe.FindString(content)
	if span == "" {
		return "", ErrNoJSON
	}

	if !strings.HasSuffix(strings.TrimSpace(span), "}") {
		span = danglingCommaRe.ReplaceAllString(span, "")
		for _, kv := range requiredNutritionKeys {
			if !strings.Contains(span, `"`+kv.key+`"`) {
				span += fmt.Sprintf(`, "%s": %s`, kv.key, kv.val)
			}
		}
		span += "}"
	}

	return trailingCommaRe.ReplaceAllString(span, "$1"), nil
}

// ExtractArray recovers a JSON array, falling back to an object span for
// models that wrap the array in {"days": [...]}.
func ExtractArray(text string) (string, error) {
	content := StripFences(text)

	if span := arrayRe.FindString(content); span != "" {
		return span, nil
	}
	if span := objectRe.FindString(content); span != "" {
		return trailingCommaRe.ReplaceAllString(span, "$1"), nil
	}
	return "", ErrNoJSON
}
