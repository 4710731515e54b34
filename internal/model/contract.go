package model

import "time"

// Contract status codes stored as strings on the wire.
const (
	ContractExpired = "0"
	ContractActive  = "1"
)

// Contract represents a signed contract. ProjectName, CustomerName and
// ProjectCategory are copied from the referenced project at intake; the
// customer and project-master rename cascades rewrite the name copies.
// Dates travel as YYYY-MM-DD strings; ContractStatus is derived from
// ClosingDate at both write and read time.
type Contract struct {
	ID              uint      `json:"id" gorm:"primarykey"`
	ContractTitle   string    `json:"contract_title" gorm:"type:varchar(255)"`
	ProjectID       uint      `json:"project_id" gorm:"index"`
	ProjectName     string    `json:"project_name" gorm:"type:varchar(255);index"`
	CustomerName    string    `json:"customer_name" gorm:"type:varchar(255);index"`
	ProjectCategory int       `json:"project_category"`
	RefNo           string    `json:"refNo" gorm:"column:ref_no;type:varchar(100)"`
	FirstParty      string    `json:"first_party" gorm:"type:varchar(255)"`
	SigningDate     string    `json:"signing_date" gorm:"type:varchar(20);index"`
	EffectiveDate   string    `json:"effective_date" gorm:"type:varchar(20)"`
	ClosingDate     string    `json:"closing_date" gorm:"type:varchar(20)"`
	ScanCopyStatus  string    `json:"scan_copy_status" gorm:"type:varchar(50)"`
	HardCopyStatus  string    `json:"hard_copy_status" gorm:"type:varchar(50)"`
	ContractStatus  string    `json:"contract_status" gorm:"type:varchar(5)"`
	ContractFile    string    `json:"contract_file" gorm:"type:varchar(255)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
