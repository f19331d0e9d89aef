package model

// FoodItem is a food lookup candidate.
type FoodItem struct {
	Name        string
	KcalPer100g float64
}
