package mealplan

import (
	"fmt"
	"time"
)

// fallbackTemplates is a fixed high-protein week used when generation
// fails. Dates are filled in relative to the current week's Monday.
var fallbackTemplates = []Day{
	{
		Day:       "Thứ Hai",
		Breakfast: Meal{Name: "Pancake protein dâu tây", Calories: 540, Protein: 30},
		Lunch:     Meal{Name: "Gà nướng quinoa", Calories: 680, Protein: 48},
		Snack:     Meal{Name: "Sữa chua Hy Lạp & hạnh nhân", Calories: 220, Protein: 18},
		Dinner:    Meal{Name: "Cá hồi nướng khoai lang", Calories: 650, Protein: 45},
	},
	{
		Day:       "Thứ Ba",
		Breakfast: Meal{Name: "Bánh mì bơ trứng", Calories: 520, Protein: 24},
		Lunch:     Meal{Name: "Gà tây cuốn rau", Calories: 580, Protein: 42},
		Snack:     Meal{Name: "Sinh tố protein chuối", Calories: 280, Protein: 30},
		Dinner:    Meal{Name: "Bò xào bông cải xanh", Calories: 670, Protein: 52},
	},
	{
		Day:       "Thứ Tư",
		Breakfast: Meal{Name: "Yến mạch qua đêm", Calories: 490, Protein: 20},
		Lunch:     Meal{Name: "Salad cá ngừ đậu gà", Calories: 640, Protein: 44},
		Snack:     Meal{Name: "Phô mai cottage & dứa", Calories: 190, Protein: 22},
		Dinner:    Meal{Name: "Gà nướng rau củ", Calories: 660, Protein: 50},
	},
	{
		Day:       "Thứ Năm",
		Breakfast: Meal{Name: "Trứng trộn rau bina", Calories: 510, Protein: 28},
		Lunch:     Meal{Name: "Tôm mì zucchini", Calories: 560, Protein: 46},
		Snack:     Meal{Name: "Táo & bơ đậu phộng", Calories: 240, Protein: 8},
		Dinner:    Meal{Name: "Đậu phụ xào rau", Calories: 610, Protein: 36},
	},
	{
		Day:       "Thứ Sáu",
		Breakfast: Meal{Name: "Sữa chua parfait", Calories: 530, Protein: 32},
		Lunch:     Meal{Name: "Gà Buddha bowl", Calories: 700, Protein: 50},
		Snack:     Meal{Name: "Cà rốt & hummus", Calories: 180, Protein: 6},
		Dinner:    Meal{Name: "Cá tuyết nướng măng tây", Calories: 600, Protein: 48},
	},
	{
		Day:       "Thứ Bảy",
		Breakfast: Meal{Name: "Smoothie bowl xanh", Calories: 500, Protein: 28},
		Lunch:     Meal{Name: "Súp đậu lăng & bánh mì", Calories: 620, Protein: 30},
		Snack:     Meal{Name: "Trứng luộc & dưa chuột", Calories: 200, Protein: 16},
		Dinner:    Meal{Name: "Viên gà tây mì zoodle", Calories: 650, Protein: 52},
	},
	{
		Day:       "Chủ Nhật",
		Breakfast: Meal{Name: "Chia pudding xoài", Calories: 480, Protein: 18},
		Lunch:     Meal{Name: "Cá hồi poke bowl", Calories: 710, Protein: 46},
		Snack:     Meal{Name: "Dâu tây & hạt óc chó", Calories: 230, Protein: 5},
		Dinner:    Meal{Name: "Salad gà nướng", Calories: 670, Protein: 54},
	},
}

// fallbackWeek stamps the templates with dates starting at this
// week's Monday.
func (s *Service) fallbackWeek() []Day {
	monday := weekStart(s.now())

	days := make([]Day, len(fallbackTemplates))
	for i, tpl := range fallbackTemplates {
		date := monday.AddDate(0, 0, i)
		tpl.Date = fmt.Sprintf("%d/%d", date.Day(), int(date.Month()))
		days[i] = tpl
	}
	return days
}

func weekStart(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	return t.AddDate(0, 0, -(offset - 1))
}
