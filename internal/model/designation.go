package model

import "time"

// Designation represents a job title. Employees hold a denormalized copy of
// the designation name.
type Designation struct {
	ID                uint      `json:"id" gorm:"primarykey"`
	Designation       string    `json:"designation" gorm:"type:varchar(255);uniqueIndex;not null"`
	DesignationStatus string    `json:"designation_status" gorm:"type:varchar(50)"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
