package models

import "time"

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Image     string    `gorm:"size:255" json:"image,omitempty"`

	// Deleting a group keeps its posts.
	GroupID *uint  `json:"group_id"`
	Group   *Group `gorm:"constraint:OnDelete:SET NULL;" json:"group,omitempty"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// PostInput carries the editable fields of a post. Image is a stored
// reference, already validated by the upload layer; empty keeps the current one.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   string
}
