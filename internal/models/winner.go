package models

import (
	"time"
)

// Winner links a user, the raffle, the winning entry and the issued voucher
type Winner struct {
	ID         string     `bson:"_id" json:"id"`
	UserID     string     `bson:"userId" json:"userId"`
	RaffleID   string     `bson:"raffleId" json:"raffleId"`
	EntryID    string     `bson:"entryId" json:"entryId"`
	VoucherID  string     `bson:"voucherId" json:"voucherId"`
	DrawnAt    time.Time  `bson:"drawnAt" json:"drawnAt"`
	Notified   bool       `bson:"notified" json:"notified"`
	NotifiedAt *time.Time `bson:"notifiedAt,omitempty" json:"notifiedAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}
