package models

import "time"

// ImageMap holds the clickable drawing overlay markup for a category.
type ImageMap struct {
	ID          int64     `json:"id"`
	CategoryKey string    `json:"category_key"`
	HTML        string    `json:"html"`
	UpdatedAt   time.Time `json:"updated_at"`
}
