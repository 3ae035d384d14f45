// Package nutrition normalizes model-produced nutrition estimates and
// computes the metabolic baselines used when prompting for plans.
package nutrition

import (
	"math"
	"strconv"
	"strings"
)

// Record is a per-portion nutrition estimate with integer gram and
// kilocalorie values.
type Record struct {
	FoodName    string `json:"food_name"`
	PortionSize string `json:"portion_size"`
	Calories    int    `json:"calories"`
	Protein     int    `json:"protein"`
	Carbs       int    `json:"carbs"`
	Fat         int    `json:"fat"`
	Sugar       int    `json:"sugar"`
}

// Overrides carry caller-supplied values that win over whatever the
// model answered when a field is missing on both spellings.
type Overrides struct {
	FoodName    string
	PortionSize string
}

// DefaultRecord is returned when a model response yields no parseable
// nutrition object at all.
func DefaultRecord() Record {
	return Record{
		FoodName:    "Unknown food",
		PortionSize: "100g",
		Calories:    200,
		Protein:     10,
		Carbs:       30,
		Fat:         5,
		Sugar:       5,
	}
}

// Normalize coerces a decoded nutrition object into a Record. Numeric
// fields accept numbers or numeric strings, are rounded half away from
// zero, and clamp to zero when absent or unparseable. The fat field
// reads the plural "fats" key first, then "fat".
func Normalize(raw map[string]any, ov Overrides) Record {
	name := stringField(raw, "food_name")
	if name == "" {
		name = stringField(raw, "foodName")
	}
	if name == "" {
		name = ov.FoodName
	}
	if name == "" {
		name = "Unknown food"
	}

	portion := stringField(raw, "portion_size")
	if portion == "" {
		portion = stringField(raw, "portionSize")
	}
	if portion == "" {
		portion = ov.PortionSize
	}
	if portion == "" {
		portion = "100g"
	}

	fat := numberField(raw, "fats")
	if _, ok := raw["fats"]; !ok {
		fat = numberField(raw, "fat")
	}

	return Record{
		FoodName:    name,
		PortionSize: portion,
		Calories:    numberField(raw, "calories"),
		Protein:     numberField(raw, "protein"),
		Carbs:       numberField(raw, "carbs"),
		Fat:         fat,
		Sugar:       numberField(raw, "sugar"),
	}
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func numberField(raw map[string]any, key string) int {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, ok := leadingFloat(n)
		if !ok {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// leadingFloat reads the longest numeric prefix of s, so suffixed values
// like "450 kcal" or "28g" still yield their number.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := false
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits = true
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits = true
		}
	}
	if !digits {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation.
// Gender matching is case-insensitive; anything other than "male" uses
// the female constant.
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.EqualFold(gender, "male") {
		return base + 5
	}
	return base - 161
}

// activityFactors maps profile activity levels to TDEE multipliers.
var activityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

// TDEE scales a BMR by the activity level multiplier. Unknown levels
// fall back to moderately active.
func TDEE(bmr float64, activityLevel string) float64 {
	factor, ok := activityFactors[strings.ToLower(activityLevel)]
	if !ok {
		factor = activityFactors["moderately_active"]
	}
	return bmr * factor
}

// BMI returns the body mass index, or 0 when height is not set.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}
