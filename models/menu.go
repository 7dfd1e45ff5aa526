package models

// MenuCategory groups menu items for the ordering surface.
type MenuCategory string

const (
	CategoryStarter MenuCategory = "starter"
	CategoryMain    MenuCategory = "main"
	CategoryBread   MenuCategory = "bread"
	CategoryDessert MenuCategory = "dessert"
	CategoryDrink   MenuCategory = "drink"
)

// MenuItem is one orderable item. Name is unique across the menu.
type MenuItem struct {
	Name     string       `json:"name" toml:"name"`
	Category MenuCategory `json:"category" toml:"category"`
	Price    float64      `json:"price" toml:"price"`
}

// Recipe maps a dish to the ingredient quantities consumed per single
// unit of the dish.
type Recipe struct {
	Dish        string             `json:"dish" toml:"dish"`
	Ingredients map[string]float64 `json:"ingredients" toml:"ingredients"`
}
