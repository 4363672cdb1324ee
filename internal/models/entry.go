package models

import (
	"time"
)

// Entry is one ticket-funded participation in a raffle. Entries are append-only.
type Entry struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	RaffleID    string    `bson:"raffleId" json:"raffleId"`
	RaffleTitle string    `bson:"raffleTitle,omitempty" json:"raffleTitle,omitempty"`
	TicketsUsed int       `bson:"ticketsUsed" json:"ticketsUsed"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}
