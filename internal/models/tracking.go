package models

import "time"

type PortionSize string

const (
	PortionSmall  PortionSize = "small"
	PortionMedium PortionSize = "medium"
	PortionLarge  PortionSize = "large"
)

type Consistency string

const (
	ConsistencyLiquid Consistency = "liquid"
	ConsistencyLoose  Consistency = "loose"
	ConsistencySoft   Consistency = "soft"
	ConsistencyFormed Consistency = "formed"
	ConsistencyHard   Consistency = "hard"
)

// Volume reuses the portion scale for stoma output.
type Volume string

const (
	VolumeSmall  Volume = "small"
	VolumeMedium Volume = "medium"
	VolumeLarge  Volume = "large"
)

type IrrigationQuality string

const (
	QualityExcellent IrrigationQuality = "excellent"
	QualityGood      IrrigationQuality = "good"
	QualityFair      IrrigationQuality = "fair"
	QualityPoor      IrrigationQuality = "poor"
)

// Meal is a logged meal or drink.
type Meal struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"userId" db:"user_id"`
	MealType    Category    `json:"mealType" db:"meal_type"`
	Description string      `json:"description" db:"description"`
	Ingredients StringList  `json:"ingredients" db:"ingredients"`
	PortionSize PortionSize `json:"portionSize,omitempty" db:"portion_size"`
	Notes       string      `json:"notes,omitempty" db:"notes"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// GasSession is one gas episode.
type GasSession struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"userId" db:"user_id"`
	Intensity         int        `json:"intensity" db:"intensity"`
	DurationMinutes   int        `json:"durationMinutes" db:"duration_minutes"`
	SuspectedTriggers StringList `json:"suspectedTriggers" db:"suspected_triggers"`
	Notes             string     `json:"notes,omitempty" db:"notes"`
	Timestamp         time.Time  `json:"timestamp" db:"timestamp"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}

// Output is one stoma output observation.
type Output struct {
	ID          string      `json:"id" db:"id"`
	UserID      string      `json:"userId" db:"user_id"`
	Consistency Consistency `json:"consistency" db:"consistency"`
	Volume      Volume      `json:"volume" db:"volume"`
	Color       string      `json:"color,omitempty" db:"color"`
	PainLevel   *int        `json:"painLevel,omitempty" db:"pain_level"`
	Notes       string      `json:"notes,omitempty" db:"notes"`
	Timestamp   time.Time   `json:"timestamp" db:"timestamp"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// Irrigation is one irrigation session.
type Irrigation struct {
	ID              string            `json:"id" db:"id"`
	UserID          string            `json:"userId" db:"user_id"`
	Quality         IrrigationQuality `json:"quality" db:"quality"`
	Completeness    int               `json:"completeness" db:"completeness"`
	Comfort         int               `json:"comfort" db:"comfort"`
	DurationMinutes int               `json:"durationMinutes" db:"duration_minutes"`
	WaterVolumeML   int               `json:"waterVolumeMl" db:"water_volume_ml"`
	Notes           string            `json:"notes,omitempty" db:"notes"`
	Timestamp       time.Time         `json:"timestamp" db:"timestamp"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
}

// Request bodies. Pointers distinguish "missing" from zero values for the validator.

type CreateMealInput struct {
	UserID      string     `json:"userId"`
	MealType    string     `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack drinks"`
	Description string     `json:"description" binding:"required,notblank"`
	Ingredients []string   `json:"ingredients"`
	PortionSize string     `json:"portionSize" binding:"omitempty,oneof=small medium large"`
	Notes       string     `json:"notes"`
	Timestamp   *time.Time `json:"timestamp" binding:"required"`
}

type CreateGasInput struct {
	UserID            string     `json:"userId"`
	Intensity         *int       `json:"intensity" binding:"required,min=1,max=10"`
	DurationMinutes   *int       `json:"durationMinutes" binding:"required,min=0"`
	SuspectedTriggers []string   `json:"suspectedTriggers"`
	Notes             string     `json:"notes"`
	Timestamp         *time.Time `json:"timestamp" binding:"required"`
}

type CreateOutputInput struct {
	UserID      string     `json:"userId"`
	Consistency string     `json:"consistency" binding:"required,oneof=liquid loose soft formed hard"`
	Volume      string     `json:"volume" binding:"required,oneof=small medium large"`
	Color       string     `json:"color"`
	PainLevel   *int       `json:"painLevel" binding:"omitempty,min=0,max=10"`
	Notes       string     `json:"notes"`
	Timestamp   *time.Time `json:"timestamp" binding:"required"`
}

type CreateIrrigationInput struct {
	UserID          string     `json:"userId"`
	Quality         string     `json:"quality" binding:"required,oneof=excellent good fair poor"`
	Completeness    *int       `json:"completeness" binding:"required,min=1,max=10"`
	Comfort         *int       `json:"comfort" binding:"required,min=1,max=10"`
	DurationMinutes int        `json:"durationMinutes" binding:"min=0"`
	WaterVolumeML   int        `json:"waterVolumeMl" binding:"min=0"`
	Notes           string     `json:"notes"`
	Timestamp       *time.Time `json:"timestamp" binding:"required"`
}
