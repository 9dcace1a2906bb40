package model

// User 身分服務的唯讀鏡像, 結帳時確認使用者存在並取得顯示名稱
type User struct {
	UserID int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Name   string `gorm:"not null;type:varchar(100)" json:"name"`
	Email  string `gorm:"not null;type:varchar(100);unique" json:"email"`
	Role   string `gorm:"not null;type:varchar(20);default:user" json:"role"`
	BaseModel
}
