package database

import (
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/shopspring/decimal"
)

const seedImage = "https://images.pexels.com/photos/1435907/pexels-photo-1435907.jpeg"

// tiered prices a pizza as base for Small, +2.50 Medium and +5.00 Large
func tiered(base string) map[string]decimal.Decimal {
	small := decimal.RequireFromString(base)
	return map[string]decimal.Decimal{
		"Small":  small,
		"Medium": small.Add(decimal.RequireFromString("2.50")),
		"Large":  small.Add(decimal.RequireFromString("5.00")),
	}
}

// DefaultCatalog is inserted on first start when SEED_CATALOG is enabled
func DefaultCatalog() []models.PizzaRequest {
	sizes := []string{"Small", "Medium", "Large"}
	return []models.PizzaRequest{
		{
			Name:         "Margherita",
			Description:  "Classic cheese and tomato pizza.",
			Image:        seedImage,
			Price:        tiered("12.99"),
			Category:     models.CategoryVegetarian,
			Toppings:     []string{"Mozzarella", "Tomato Sauce", "Basil"},
			Sizes:        sizes,
			IsVegetarian: true,
		},
		{
			Name:        "Pepperoni",
			Description: "A classic with generous pepperoni slices.",
			Image:       seedImage,
			Price:       tiered("14.50"),
			Category:    models.CategoryNonVegetarian,
			Toppings:    []string{"Mozzarella", "Tomato Sauce", "Pepperoni"},
			Sizes:       sizes,
		},
		{
			Name:         "Veggie Supreme",
			Description:  "Loaded with fresh vegetables and olives.",
			Image:        seedImage,
			Price:        tiered("13.75"),
			Category:     models.CategoryVegetarian,
			Toppings:     []string{"Mozzarella", "Bell Peppers", "Onions", "Olives", "Mushrooms"},
			Sizes:        sizes,
			IsVegetarian: true,
		},
		{
			Name:         "Vegan Garden",
			Description:  "Dairy free base with roasted vegetables.",
			Image:        seedImage,
			Price:        tiered("14.25"),
			Category:     models.CategoryVegan,
			Toppings:     []string{"Tomato Sauce", "Zucchini", "Spinach", "Cherry Tomatoes"},
			Sizes:        sizes,
			IsVegetarian: true,
		},
		{
			Name:        "BBQ Chicken",
			Description: "Smoky barbecue sauce, chicken and red onion.",
			Image:       seedImage,
			Price:       tiered("15.99"),
			Category:    models.CategorySpecialty,
			Toppings:    []string{"BBQ Sauce", "Chicken", "Red Onion", "Mozzarella"},
			Sizes:       sizes,
		},
	}
}
