// Package events publishes domain events produced by the draw engine.
package events

import (
	"context"
	"time"
)

// VoucherIssued is emitted after a winner and its voucher have been persisted
type VoucherIssued struct {
	WinnerID       string    `json:"winnerId"`
	VoucherID      string    `json:"voucherId"`
	VoucherRef     string    `json:"voucherRef"`
	UserID         string    `json:"userId"`
	UserEmail      string    `json:"userEmail,omitempty"`
	RaffleID       string    `json:"raffleId"`
	RaffleTitle    string    `json:"raffleTitle"`
	PartnerName    string    `json:"partnerName,omitempty"`
	IsDigitalPrize bool      `json:"isDigitalPrize"`
	ValidUntil     time.Time `json:"validUntil"`
	DrawnAt        time.Time `json:"drawnAt"`
}

// Publisher delivers voucher events to the notification pipeline
type Publisher interface {
	PublishVoucherIssued(ctx context.Context, event VoucherIssued) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// PublishVoucherIssued implements Publisher
func (NopPublisher) PublishVoucherIssued(context.Context, VoucherIssued) error { return nil }

// Close implements Publisher
func (NopPublisher) Close() error { return nil }
