package models

import "time"

// Message is a private message between two users. It goes away with either user.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID uint      `json:"from_user_id" gorm:"not null;index"`
	ToUserID   uint      `json:"to_user_id" gorm:"not null;index"`
	Content    string    `json:"content" gorm:"size:1000;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	From *User `json:"-" gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE"`
	To   *User `json:"-" gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE"`
}

// SendMessageRequest defines the input for sending a message
type SendMessageRequest struct {
	FromUserID uint   `json:"from_user_id" validate:"required"`
	ToUserID   uint   `json:"to_user_id" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=1000"`
}
