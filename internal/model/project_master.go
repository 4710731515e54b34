package model

import "time"

// ProjectMaster is the master list of project names. Projects and contracts
// hold denormalized copies of the project name.
type ProjectMaster struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ProjectName   string    `json:"project_name" gorm:"type:varchar(255);uniqueIndex;not null"`
	ProjectCode   string    `json:"project_code" gorm:"type:varchar(100)"`
	ProjectStatus string    `json:"project_status" gorm:"type:varchar(50)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName keeps the collection name used by the CRM frontend.
func (ProjectMaster) TableName() string { return "projects_master" }
