package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DurationUnit qualifies a program duration value.
type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
)

// MacroTarget is a min/max range for one macro, in grams (or kcal for calories).
// Zero Max means "no upper bound".
type MacroTarget struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max,omitempty" json:"max,omitempty"`
}

// NutritionProgram is a coach-built meal plan spanning a number of days.
// Days are not stored as records; a day exists once its first meal does.
type NutritionProgram struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	DurationValue int          `bson:"durationValue,omitempty" json:"durationValue,omitempty"`
	DurationUnit  DurationUnit `bson:"durationUnit,omitempty" json:"durationUnit,omitempty"`

	Calories MacroTarget `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  MacroTarget `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    MacroTarget `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat      MacroTarget `bson:"fat,omitempty" json:"fat,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Meal is one meal slot on a given day of a program.
// Order is 1-based and unique within the (program, day) scope.
type Meal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	DayNumber int                `bson:"dayNumber" json:"dayNumber"`
	Order     int                `bson:"order" json:"order"`
	Name      string             `bson:"name" json:"name"` // e.g., "Breakfast"
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MealItem is one food entry inside a Meal.
// Order is 1-based and unique within the owning meal.
type MealItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MealID   primitive.ObjectID `bson:"mealId" json:"mealId"`
	FoodID   primitive.ObjectID `bson:"foodId" json:"foodId"`
	Order    int                `bson:"order" json:"order"`
	AmountG  float64            `bson:"amountG" json:"amountG"` // grams of the food
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}
