package models

import "time"

// Micropost is one unit of user content. It is stored either in PostgreSQL or in
// the MongoDB posts collection, hence both tag sets.
type Micropost struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index:idx_microposts_author_created,priority:1" bson:"author_id"`
	Content   string    `json:"content" gorm:"size:280;not null" bson:"content"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_microposts_author_created,priority:2" bson:"created_at"`

	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" bson:"-"`
}

// CreateMicropostRequest defines the input for publishing a micropost
type CreateMicropostRequest struct {
	AuthorID uint   `json:"author_id" validate:"required"`
	Content  string `json:"content" validate:"required,min=1,max=280"`
}
