package model

import "time"

// Project categories stored as coded values; list filters translate the
// human-readable names.
const (
	CategoryService = 1
	CategoryProduct = 2
	CategoryOther   = 3
)

// Project represents a running project. ProjectName and CustomerName are
// denormalized copies of ProjectMaster and Customer names.
type Project struct {
	ID              uint      `json:"id" gorm:"primarykey"`
	ProjectName     string    `json:"project_name" gorm:"type:varchar(255);index"`
	CustomerName    string    `json:"customer_name" gorm:"type:varchar(255);index"`
	ProjectCategory int       `json:"project_category" gorm:"index"`
	Department      string    `json:"department" gorm:"type:varchar(255)"`
	HOD             string    `json:"hod" gorm:"column:hod;type:varchar(255)"`
	PM              string    `json:"pm" gorm:"column:pm;type:varchar(255)"`
	Year            string    `json:"year" gorm:"type:varchar(20)"`
	Phase           string    `json:"phase" gorm:"type:varchar(100)"`
	ProjectCode     string    `json:"project_code" gorm:"type:varchar(100)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
