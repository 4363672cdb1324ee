package models

import (
	"time"
)

// VoucherStatus represents the redemption state of a voucher
type VoucherStatus string

const (
	VoucherStatusActive    VoucherStatus = "active"
	VoucherStatusRedeemed  VoucherStatus = "redeemed"
	VoucherStatusExpired   VoucherStatus = "expired"
	VoucherStatusCancelled VoucherStatus = "cancelled"
)

// Voucher is the redemption artifact issued to a raffle winner.
// User, raffle and partner fields are snapshots taken at draw time.
type Voucher struct {
	ID         string `bson:"_id" json:"id"`
	VoucherRef string `bson:"voucherRef" json:"voucherRef"`

	UserID    string `bson:"userId" json:"userId"`
	UserName  string `bson:"userName" json:"userName"`
	UserEmail string `bson:"userEmail" json:"userEmail"`

	RaffleID    string  `bson:"raffleId" json:"raffleId"`
	RaffleTitle string  `bson:"raffleTitle" json:"raffleTitle"`
	PartnerID   string  `bson:"partnerId" json:"partnerId"`
	PartnerName string  `bson:"partnerName" json:"partnerName"`
	PrizeValue  float64 `bson:"prizeValue" json:"prizeValue"`
	Currency    string  `bson:"currency" json:"currency"`

	IsDigitalPrize   bool   `bson:"isDigitalPrize" json:"isDigitalPrize"`
	SecretCode       string `bson:"secretCode,omitempty" json:"secretCode,omitempty"` // Set iff IsDigitalPrize
	VerificationCode string `bson:"verificationCode" json:"verificationCode"`

	Status     VoucherStatus `bson:"status" json:"status"`
	ValidUntil time.Time     `bson:"validUntil" json:"validUntil"`
	RedeemedAt *time.Time    `bson:"redeemedAt,omitempty" json:"redeemedAt,omitempty"`

	PartnerEmail    string `bson:"partnerEmail,omitempty" json:"partnerEmail,omitempty"`
	PartnerWhatsapp string `bson:"partnerWhatsapp,omitempty" json:"partnerWhatsapp,omitempty"`
	PartnerLine     string `bson:"partnerLine,omitempty" json:"partnerLine,omitempty"`
	PartnerAddress  string `bson:"partnerAddress,omitempty" json:"partnerAddress,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsExpired reports whether the voucher is past its validity window. Expiry is not swept.
func (v *Voucher) IsExpired(now time.Time) bool {
	return now.After(v.ValidUntil)
}
