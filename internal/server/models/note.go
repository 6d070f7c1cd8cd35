package models

import "time"

type Note struct {
	ID        string
	AccountID string
	Title     string
	Content   string
	CreatedAt time.Time
}
