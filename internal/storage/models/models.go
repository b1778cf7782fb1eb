// Package models holds the persisted record types shared by the storage
// backends.
package models

import "time"

// PolicyCondition is one knowledge-base sentence for a transaction
// category.
type PolicyCondition struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	Condition  string    `json:"condition"`
	SourceFile string    `json:"source_file"`
	CreatedAt  time.Time `json:"created_at"`
}

// QueryRecord captures one answered question for the history endpoint.
type QueryRecord struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}
