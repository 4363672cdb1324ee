package models

import (
	"time"
)

// Partner is the business sponsoring a raffle's prize
type Partner struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Whatsapp    string    `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	Line        string    `bson:"line,omitempty" json:"line,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
