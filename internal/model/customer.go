package model

import "time"

// Customer represents a CRM customer. The name is the natural key that
// projects and contracts denormalize.
type Customer struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(50)"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	Address   string    `json:"address" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:varchar(50)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
