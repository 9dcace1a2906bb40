package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (q *Queries) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := q.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser 身分服務同步使用者資料
func (q *Queries) UpsertUser(ctx context.Context, user *model.User) error {
	return q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
	}).Create(user).Error
}
