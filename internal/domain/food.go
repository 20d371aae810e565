package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Food is one entry in a coach's food library.
// Nutrient values are per 100 grams.
type Food struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name    string             `bson:"name" json:"name"`
	Brand   string             `bson:"brand,omitempty" json:"brand,omitempty"`

	CaloriesPer100g float64 `bson:"caloriesPer100g" json:"caloriesPer100g"`
	ProteinPer100g  float64 `bson:"proteinPer100g" json:"proteinPer100g"`
	CarbsPer100g    float64 `bson:"carbsPer100g" json:"carbsPer100g"`
	FatPer100g      float64 `bson:"fatPer100g" json:"fatPer100g"`

	// FdcID is set when the food was imported from a USDA FoodData Central
	// payload; zero for manually entered foods.
	FdcID  int    `bson:"fdcId,omitempty" json:"fdcId,omitempty"`
	Source string `bson:"source" json:"source"` // "manual" or "usda"

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
