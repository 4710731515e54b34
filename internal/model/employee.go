package model

import "time"

// Employee represents an employee record. DepartmentName and Designation are
// denormalized copies kept consistent by the department and designation
// rename cascades. Pass holds a bcrypt hash and is never serialized.
type Employee struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	EmployeeName   string    `json:"employee_name" gorm:"type:varchar(255);uniqueIndex;not null"`
	DepartmentName string    `json:"department_name" gorm:"type:varchar(255);index"`
	Designation    string    `json:"designation" gorm:"type:varchar(255);index"`
	Phone          string    `json:"employee_phone" gorm:"column:employee_phone;type:varchar(50)"`
	Email          string    `json:"employee_email" gorm:"column:employee_email;type:varchar(255)"`
	UID            string    `json:"employee_uid" gorm:"column:employee_uid;type:varchar(100);index"`
	Pass           string    `json:"-" gorm:"column:employee_pass;type:varchar(255)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
