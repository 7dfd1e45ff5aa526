// Package catalog holds the read-only menu and recipe lookup tables.
// The catalog is built once at process start from a TOML dataset and
// is safe for concurrent readers; nothing mutates it afterwards.
package catalog

import (
	"sort"

	"github.com/BurntSushi/toml"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// Dataset is the on-disk shape of the seed file.
type Dataset struct {
	Items   []models.MenuItem `toml:"items"`
	Recipes []models.Recipe   `toml:"recipes"`
}

// Catalog answers price and recipe lookups by name.
type Catalog struct {
	items   map[string]models.MenuItem
	recipes map[string]map[string]float64
	logger  *logger.Logger
}

// LoadFile reads a TOML dataset from path and builds a catalog from it.
func LoadFile(path string, log *logger.Logger) (*Catalog, error) {
	var ds Dataset
	if _, err := toml.DecodeFile(path, &ds); err != nil {
		return nil, apperrors.NewValidation("failed to decode catalog dataset %s: %v", path, err)
	}
	return New(ds, log)
}

// New validates the dataset and builds the lookup tables.
func New(ds Dataset, log *logger.Logger) (*Catalog, error) {
	c := &Catalog{
		items:   make(map[string]models.MenuItem, len(ds.Items)),
		recipes: make(map[string]map[string]float64, len(ds.Recipes)),
		logger:  log.WithComponent("catalog"),
	}

	for _, item := range ds.Items {
		if item.Name == "" {
			return nil, apperrors.NewValidation("menu item with empty name")
		}
		if item.Price <= 0 {
			return nil, apperrors.NewValidation("menu item %q: price must be positive, got %.2f", item.Name, item.Price)
		}
		if _, exists := c.items[item.Name]; exists {
			return nil, apperrors.NewConflict("menu item", item.Name, "duplicate name in dataset")
		}
		c.items[item.Name] = item
	}

	for _, recipe := range ds.Recipes {
		if recipe.Dish == "" {
			return nil, apperrors.NewValidation("recipe with empty dish name")
		}
		if _, exists := c.recipes[recipe.Dish]; exists {
			return nil, apperrors.NewConflict("recipe", recipe.Dish, "duplicate dish in dataset")
		}
		if len(recipe.Ingredients) == 0 {
			return nil, apperrors.NewValidation("recipe %q has no ingredients", recipe.Dish)
		}
		ingredients := make(map[string]float64, len(recipe.Ingredients))
		for name, qty := range recipe.Ingredients {
			if qty <= 0 {
				return nil, apperrors.NewValidation("recipe %q: ingredient %q quantity must be positive", recipe.Dish, name)
			}
			ingredients[name] = qty
		}
		c.recipes[recipe.Dish] = ingredients
	}

	c.logger.Info("Catalog loaded", "menu_items", len(c.items), "recipes", len(c.recipes))
	return c, nil
}

// PriceOf returns the menu item for name.
func (c *Catalog) PriceOf(name string) (models.MenuItem, error) {
	item, ok := c.items[name]
	if !ok {
		return models.MenuItem{}, apperrors.NewNotFound("menu item", name)
	}
	return item, nil
}

// RecipeOf returns a copy of the per-unit ingredient quantities for dish.
func (c *Catalog) RecipeOf(dish string) (map[string]float64, error) {
	recipe, ok := c.recipes[dish]
	if !ok {
		return nil, apperrors.NewNotFound("recipe", dish)
	}
	out := make(map[string]float64, len(recipe))
	for name, qty := range recipe {
		out[name] = qty
	}
	return out, nil
}

// ResolveDeltas multiplies the per-unit recipe of dish by qty, building
// the deduction map handed to the inventory ledger. An unknown dish
// fails before any inventory is touched.
func (c *Catalog) ResolveDeltas(dish string, qty int) (map[string]float64, error) {
	if qty < 1 {
		return nil, apperrors.NewValidation("quantity must be at least 1, got %d", qty)
	}
	recipe, err := c.RecipeOf(dish)
	if err != nil {
		return nil, err
	}
	deltas := make(map[string]float64, len(recipe))
	for name, perUnit := range recipe {
		deltas[name] = perUnit * float64(qty)
	}
	return deltas, nil
}

// Items returns all menu items sorted by name.
func (c *Catalog) Items() []models.MenuItem {
	items := make([]models.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
