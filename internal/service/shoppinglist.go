package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

// ShoppingListRow is one aggregated line of a user's shopping list.
type ShoppingListRow struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingListService aggregates the ingredients of every recipe in a
// user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums ingredient amounts across all cart recipes. Rows are
// merged by (name, measurement unit) and keep the order in which they
// first appear; an empty cart yields an empty list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListRow, error) {
	var links []models.RecipeIngredient
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("recipe_id IN (SELECT recipe_id FROM cart_items WHERE user_id = ?)", userID).
		Order("created_at").
		Find(&links).Error
	if err != nil {
		return nil, err
	}

	type key struct {
		name string
		unit string
	}
	index := make(map[key]int, len(links))
	rows := make([]ShoppingListRow, 0, len(links))
	for _, link := range links {
		k := key{name: link.Ingredient.Name, unit: link.Ingredient.MeasurementUnit}
		if i, ok := index[k]; ok {
			rows[i].Amount += link.Amount
			continue
		}
		index[k] = len(rows)
		rows = append(rows, ShoppingListRow{
			Name:   link.Ingredient.Name,
			Unit:   link.Ingredient.MeasurementUnit,
			Amount: link.Amount,
		})
	}
	return rows, nil
}

// WriteCSV renders aggregated rows as a CSV document with a header line.
func WriteCSV(w io.Writer, rows []ShoppingListRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "measurement_unit", "amount"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Name, row.Unit, strconv.Itoa(row.Amount)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
