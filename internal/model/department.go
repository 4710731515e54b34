package model

import "time"

// Department represents an organizational department. Employees hold a
// denormalized copy of the department name.
type Department struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	DepartmentName   string    `json:"department_name" gorm:"type:varchar(255);uniqueIndex;not null"`
	DepartmentStatus string    `json:"department_status" gorm:"type:varchar(50)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
