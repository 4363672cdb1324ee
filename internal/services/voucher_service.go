package services

import (
	"context"

	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories"
)

var _ VoucherService = (*VoucherServiceImpl)(nil)

// VoucherServiceImpl serves voucher and winner reads
type VoucherServiceImpl struct {
	voucherRepo repositories.VoucherRepository
	winnerRepo  repositories.WinnerRepository
}

// NewVoucherService creates a new VoucherServiceImpl
func NewVoucherService(voucherRepo repositories.VoucherRepository, winnerRepo repositories.WinnerRepository) *VoucherServiceImpl {
	return &VoucherServiceImpl{
		voucherRepo: voucherRepo,
		winnerRepo:  winnerRepo,
	}
}

// ListUserVouchers lists a user's vouchers, newest first
func (s *VoucherServiceImpl) ListUserVouchers(ctx context.Context, userID string) ([]*models.Voucher, error) {
	return s.voucherRepo.FindByUserID(ctx, userID)
}

// GetVoucher returns a voucher to its owner or an admin
func (s *VoucherServiceImpl) GetVoucher(ctx context.Context, voucherID, requesterID string, isAdmin bool) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.FindByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && voucher.UserID != requesterID {
		return nil, ErrForbidden
	}
	return voucher, nil
}

// ListRaffleWinners lists the winners of a raffle
func (s *VoucherServiceImpl) ListRaffleWinners(ctx context.Context, raffleID string) ([]*models.Winner, error) {
	return s.winnerRepo.FindByRaffleID(ctx, raffleID)
}

// ListUserWinnings lists a user's wins
func (s *VoucherServiceImpl) ListUserWinnings(ctx context.Context, userID string) ([]*models.Winner, error) {
	return s.winnerRepo.FindByUserID(ctx, userID)
}
