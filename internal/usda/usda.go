// Package usda parses FoodData-Central-shaped payloads into library foods.
// Only the data-shape contract lives here; fetching from the USDA API is the
// caller's concern (usually a browser-side search whose selected result is
// posted to the import endpoint).
package usda

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Nutrient numbers from the FoodData Central nutrient table.
const (
	nutrientEnergyKcal = "208"
	nutrientProtein    = "203"
	nutrientFat        = "204"
	nutrientCarbs      = "205"
)

var ErrMissingDescription = errors.New("usda food has no description")

// FoodPayload mirrors the relevant subset of a FoodData Central food item.
// Amounts are per 100 grams, matching how FDC reports foodNutrients.
type FoodPayload struct {
	FdcID         int            `json:"fdcId"`
	Description   string         `json:"description"`
	BrandOwner    string         `json:"brandOwner,omitempty"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

type foodNutrient struct {
	Nutrient nutrientRef `json:"nutrient"`
	Amount   float64     `json:"amount"`

	// Flattened variant used by the FDC search endpoint.
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	Value          float64 `json:"value,omitempty"`
}

type nutrientRef struct {
	Number   string `json:"number"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// number tolerates both payload variants: the detail endpoint nests the
// nutrient object, the search endpoint flattens it.
func (n foodNutrient) number() string {
	if n.Nutrient.Number != "" {
		return n.Nutrient.Number
	}
	return n.NutrientNumber
}

func (n foodNutrient) amount() float64 {
	if n.Nutrient.Number != "" {
		return n.Amount
	}
	return n.Value
}

// ImportedFood is the parsed, per-100g nutrient shape handed to the food
// library.
type ImportedFood struct {
	FdcID           int
	Name            string
	Brand           string
	CaloriesPer100g float64
	ProteinPer100g  float64
	CarbsPer100g    float64
	FatPer100g      float64
}

// ParseFood decodes a single FDC food item and extracts the macro nutrients.
// Nutrients outside the macro set are ignored; a missing macro stays zero.
func ParseFood(data []byte) (*ImportedFood, error) {
	var payload FoodPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode usda payload: %w", err)
	}
	return FromPayload(&payload)
}

// FromPayload maps an already-decoded payload into an ImportedFood.
func FromPayload(payload *FoodPayload) (*ImportedFood, error) {
	if payload.Description == "" {
		return nil, ErrMissingDescription
	}

	food := &ImportedFood{
		FdcID: payload.FdcID,
		Name:  payload.Description,
		Brand: payload.BrandOwner,
	}
	for _, fn := range payload.FoodNutrients {
		switch fn.number() {
		case nutrientEnergyKcal:
			food.CaloriesPer100g = fn.amount()
		case nutrientProtein:
			food.ProteinPer100g = fn.amount()
		case nutrientFat:
			food.FatPer100g = fn.amount()
		case nutrientCarbs:
			food.CarbsPer100g = fn.amount()
		}
	}
	return food, nil
}
