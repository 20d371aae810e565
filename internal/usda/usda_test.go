package usda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFoodDetailShape(t *testing.T) {
	payload := []byte(`{
		"fdcId": 171688,
		"description": "Chicken breast, roasted",
		"foodNutrients": [
			{"nutrient": {"number": "208", "name": "Energy", "unitName": "kcal"}, "amount": 165},
			{"nutrient": {"number": "203", "name": "Protein", "unitName": "g"}, "amount": 31},
			{"nutrient": {"number": "204", "name": "Total lipid (fat)", "unitName": "g"}, "amount": 3.6},
			{"nutrient": {"number": "205", "name": "Carbohydrate", "unitName": "g"}, "amount": 0},
			{"nutrient": {"number": "301", "name": "Calcium", "unitName": "mg"}, "amount": 15}
		]
	}`)

	food, err := ParseFood(payload)
	require.NoError(t, err)
	assert.Equal(t, 171688, food.FdcID)
	assert.Equal(t, "Chicken breast, roasted", food.Name)
	assert.Equal(t, 165.0, food.CaloriesPer100g)
	assert.Equal(t, 31.0, food.ProteinPer100g)
	assert.Equal(t, 3.6, food.FatPer100g)
	assert.Equal(t, 0.0, food.CarbsPer100g)
}

func TestParseFoodSearchShape(t *testing.T) {
	// The search endpoint flattens nutrient number and value.
	payload := []byte(`{
		"fdcId": 2344719,
		"description": "Oats, rolled",
		"brandOwner": "Acme Mills",
		"foodNutrients": [
			{"nutrientNumber": "208", "value": 379},
			{"nutrientNumber": "203", "value": 13.2},
			{"nutrientNumber": "205", "value": 67.7},
			{"nutrientNumber": "204", "value": 6.5}
		]
	}`)

	food, err := ParseFood(payload)
	require.NoError(t, err)
	assert.Equal(t, "Acme Mills", food.Brand)
	assert.Equal(t, 379.0, food.CaloriesPer100g)
	assert.Equal(t, 13.2, food.ProteinPer100g)
	assert.Equal(t, 67.7, food.CarbsPer100g)
	assert.Equal(t, 6.5, food.FatPer100g)
}

func TestParseFoodMissingDescription(t *testing.T) {
	_, err := ParseFood([]byte(`{"fdcId": 1, "foodNutrients": []}`))
	assert.ErrorIs(t, err, ErrMissingDescription)
}

func TestParseFoodMalformedJSON(t *testing.T) {
	_, err := ParseFood([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseFoodMissingMacrosStayZero(t *testing.T) {
	food, err := ParseFood([]byte(`{"description": "Water", "foodNutrients": []}`))
	require.NoError(t, err)
	assert.Zero(t, food.CaloriesPer100g)
	assert.Zero(t, food.ProteinPer100g)
}
