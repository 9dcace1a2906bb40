package service

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
)

// BillingInput 只有在使用者還沒有付款資料時才會使用
type BillingInput struct {
	CardNumber string
	CVV        string
	ExpiryDate string
	HolderName string
}

func (b BillingInput) Complete() bool {
	return strings.TrimSpace(b.CardNumber) != "" &&
		strings.TrimSpace(b.CVV) != "" &&
		strings.TrimSpace(b.ExpiryDate) != "" &&
		strings.TrimSpace(b.HolderName) != ""
}

// resolvePaymentDetails 已存在就沿用, 不會被之後的輸入覆蓋
func resolvePaymentDetails(ctx context.Context, q repository.IPaymentRepository, userID int64, billing BillingInput) (*model.PaymentDetails, error) {
	details, err := q.GetPaymentDetailsByUserID(ctx, userID)
	if err == nil {
		return details, nil
	}
	if !errors.Is(err, repository.ErrPaymentDetailsNotFound) {
		return nil, err
	}
	if !billing.Complete() {
		return nil, ErrInvalidBillingDetails
	}
	return q.CreatePaymentDetailsIfNotExists(ctx, &model.PaymentDetails{
		UserID:     userID,
		CardNumber: strings.TrimSpace(billing.CardNumber),
		CVV:        strings.TrimSpace(billing.CVV),
		ExpiryDate: strings.TrimSpace(billing.ExpiryDate),
		HolderName: strings.TrimSpace(billing.HolderName),
	})
}
