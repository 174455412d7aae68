package domain

import (
	"time"
)

// User represents an account identity. Users are created lazily on the
// first authenticated business write.
type User struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex:uni_users_email;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for User.
func (User) TableName() string {
	return "users"
}
