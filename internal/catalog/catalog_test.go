package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text"})
}

func TestLoadFile(t *testing.T) {
	c, err := LoadFile(filepath.Join("testdata", "menu.toml"), testLogger())
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	item, err := c.PriceOf("Paneer Tikka")
	if err != nil {
		t.Fatalf("PriceOf returned error: %v", err)
	}
	if item.Price != 280.0 {
		t.Errorf("expected price 280.0, got %.2f", item.Price)
	}
	if item.Category != models.CategoryStarter {
		t.Errorf("expected category starter, got %s", item.Category)
	}

	recipe, err := c.RecipeOf("Paneer Tikka")
	if err != nil {
		t.Fatalf("RecipeOf returned error: %v", err)
	}
	if recipe["Paneer"] != 250.0 {
		t.Errorf("expected 250.0 Paneer per unit, got %.2f", recipe["Paneer"])
	}
}

func TestPriceOf_UnknownItem(t *testing.T) {
	c, err := New(Dataset{}, testLogger())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = c.PriceOf("Dal Makhani")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveDeltas(t *testing.T) {
	c, err := LoadFile(filepath.Join("testdata", "menu.toml"), testLogger())
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	deltas, err := c.ResolveDeltas("Paneer Tikka", 2)
	if err != nil {
		t.Fatalf("ResolveDeltas returned error: %v", err)
	}
	if deltas["Paneer"] != 500.0 {
		t.Errorf("expected 500.0 Paneer for 2 units, got %.2f", deltas["Paneer"])
	}
	if deltas["Yogurt"] != 100.0 {
		t.Errorf("expected 100.0 Yogurt for 2 units, got %.2f", deltas["Yogurt"])
	}

	if _, err := c.ResolveDeltas("Unknown Dish", 1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown dish, got %v", err)
	}
	if _, err := c.ResolveDeltas("Paneer Tikka", 0); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation for zero quantity, got %v", err)
	}
}

func TestNew_RejectsBadDatasets(t *testing.T) {
	tests := []struct {
		name string
		ds   Dataset
		want error
	}{
		{
			name: "non-positive price",
			ds:   Dataset{Items: []models.MenuItem{{Name: "Chai", Price: 0}}},
			want: apperrors.ErrValidation,
		},
		{
			name: "duplicate item name",
			ds: Dataset{Items: []models.MenuItem{
				{Name: "Chai", Price: 30},
				{Name: "Chai", Price: 40},
			}},
			want: apperrors.ErrConflict,
		},
		{
			name: "recipe without ingredients",
			ds:   Dataset{Recipes: []models.Recipe{{Dish: "Chai"}}},
			want: apperrors.ErrValidation,
		},
		{
			name: "non-positive ingredient quantity",
			ds: Dataset{Recipes: []models.Recipe{
				{Dish: "Chai", Ingredients: map[string]float64{"Milk": -1}},
			}},
			want: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ds, testLogger())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
