package nutrition

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("CompleteObject", func(t *testing.T) {
		got := Normalize(map[string]any{
			"food_name":    "Phở bò",
			"portion_size": "1 tô (500g)",
			"calories":     float64(450),
			"protein":      float64(28),
			"carbs":        float64(60),
			"fat":          float64(10),
			"sugar":        float64(3),
		}, Overrides{})
		want := Record{FoodName: "Phở bò", PortionSize: "1 tô (500g)", Calories: 450, Protein: 28, Carbs: 60, Fat: 10, Sugar: 3}
		if got != want {
			t.Errorf("Normalize mismatch: got %+v, want %+v", got, want)
		}
	})

	t.Run("AltSpellings", func(t *testing.T) {
		got := Normalize(map[string]any{
			"foodName":    "Bánh mì",
			"portionSize": "1 ổ",
			"fats":        float64(12),
		}, Overrides{})
		if got.FoodName != "Bánh mì" || got.PortionSize != "1 ổ" {
			t.Errorf("camelCase keys not honored: %+v", got)
		}
		if got.Fat != 12 {
			t.Errorf("Expected fats alias to map to Fat=12, got %d", got.Fat)
		}
	})

	t.Run("OverridesWinOverMissing", func(t *testing.T) {
		got := Normalize(map[string]any{"calories": float64(100)}, Overrides{FoodName: "Trà sữa", PortionSize: "1 ly"})
		if got.FoodName != "Trà sữa" || got.PortionSize != "1 ly" {
			t.Errorf("Overrides not applied: %+v", got)
		}
	})

	t.Run("MissingEverything", func(t *testing.T) {
		got := Normalize(map[string]any{}, Overrides{})
		if got.FoodName != "Unknown food" || got.PortionSize != "100g" {
			t.Errorf("Placeholders not applied: %+v", got)
		}
		if got.Calories != 0 || got.Protein != 0 {
			t.Errorf("Missing numbers should clamp to 0: %+v", got)
		}
	})

	t.Run("FatsWinsOverFat", func(t *testing.T) {
		got := Normalize(map[string]any{
			"fats": float64(12),
			"fat":  float64(7),
		}, Overrides{})
		if got.Fat != 12 {
			t.Errorf("Expected plural key to take precedence, got Fat=%d", got.Fat)
		}
	})

	t.Run("SuffixedNumericStrings", func(t *testing.T) {
		got := Normalize(map[string]any{
			"calories": "450 kcal",
			"protein":  "28g",
			"carbs":    "60.5 g",
		}, Overrides{})
		if got.Calories != 450 || got.Protein != 28 {
			t.Errorf("Expected numeric prefixes 450/28, got %d/%d", got.Calories, got.Protein)
		}
		if got.Carbs != 61 {
			t.Errorf("Expected rounded 61, got %d", got.Carbs)
		}
	})

	t.Run("NumericStringsAndJunk", func(t *testing.T) {
		got := Normalize(map[string]any{
			"calories": "450.6",
			"protein":  "lots",
			"carbs":    float64(-20),
			"sugar":    true,
		}, Overrides{})
		if got.Calories != 451 {
			t.Errorf("Expected rounded 451, got %d", got.Calories)
		}
		if got.Protein != 0 || got.Carbs != 0 || got.Sugar != 0 {
			t.Errorf("Junk values should clamp to 0: %+v", got)
		}
	})
}

func TestDefaultRecord(t *testing.T) {
	got := DefaultRecord()
	want := Record{FoodName: "Unknown food", PortionSize: "100g", Calories: 200, Protein: 10, Carbs: 30, Fat: 5, Sugar: 5}
	if got != want {
		t.Errorf("DefaultRecord mismatch: got %+v, want %+v", got, want)
	}
}

func TestBMR(t *testing.T) {
	t.Run("Male", func(t *testing.T) {
		got := BMR(70, 175, 30, "male")
		want := 10*70.0 + 6.25*175 - 5*30 + 5
		if math.Abs(got-want) > 0.001 {
			t.Errorf("BMR male: got %f, want %f", got, want)
		}
	})

	t.Run("Female", func(t *testing.T) {
		got := BMR(60, 160, 25, "female")
		want := 10*60.0 + 6.25*160 - 5*25 - 161
		if math.Abs(got-want) > 0.001 {
			t.Errorf("BMR female: got %f, want %f", got, want)
		}
	})

	t.Run("UnknownGenderUsesFemaleConstant", func(t *testing.T) {
		if BMR(60, 160, 25, "") != BMR(60, 160, 25, "female") {
			t.Error("Unset gender should use the female constant")
		}
	})
}

func TestTDEE(t *testing.T) {
	bmr := 1500.0
	cases := []struct {
		level  string
		factor float64
	}{
		{"sedentary", 1.2},
		{"lightly_active", 1.375},
		{"moderately_active", 1.55},
		{"very_active", 1.725},
		{"extra_active", 1.9},
		{"couch surfing", 1.55},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			got := TDEE(bmr, tc.level)
			if math.Abs(got-bmr*tc.factor) > 0.001 {
				t.Errorf("TDEE(%q): got %f, want %f", tc.level, got, bmr*tc.factor)
			}
		})
	}
}

func TestBMI(t *testing.T) {
	got := BMI(70, 175)
	if math.Abs(got-22.857) > 0.01 {
		t.Errorf("BMI: got %f, want ~22.86", got)
	}
	if BMI(70, 0) != 0 {
		t.Error("Zero height should yield BMI 0")
	}
}
