package models

import (
	"time"
)

// User represents an app user holding a ticket balance
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Picture   string    `bson:"picture,omitempty" json:"picture,omitempty"`
	Tickets   int       `bson:"tickets" json:"tickets"`
	Role      string    `bson:"role" json:"role"` // user or admin
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
