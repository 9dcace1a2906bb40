package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (q *Queries) GetPaymentDetailsByUserID(ctx context.Context, userID int64) (*model.PaymentDetails, error) {
	var details model.PaymentDetails
	err := q.db.WithContext(ctx).Where("user_id = ?", userID).First(&details).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPaymentDetailsNotFound
		}
		return nil, err
	}
	return &details, nil
}

// CreatePaymentDetailsIfNotExists 同時寫入時由 unique(user_id) 決定誰先, 之後一律重讀
func (q *Queries) CreatePaymentDetailsIfNotExists(ctx context.Context, details *model.PaymentDetails) (*model.PaymentDetails, error) {
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(details).Error
	if err != nil {
		return nil, err
	}
	return q.GetPaymentDetailsByUserID(ctx, details.UserID)
}

func (q *Queries) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return q.db.WithContext(ctx).Create(payment).Error
}

func (q *Queries) GetPaymentByID(ctx context.Context, paymentID int64) (*model.Payment, error) {
	var payment model.Payment
	err := q.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", paymentID, gorm.ErrRecordNotFound)
		}
		return nil, err
	}
	return &payment, nil
}
