package handler

import (
	"fmt"
	"net/http"
	"testing"

	"crm-service/internal/model"
)

func TestDepartmentDuplicate(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/departments", map[string]string{
		"department_name": "Engineering", "department_status": "Active",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create department: status %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/departments", map[string]string{"department_name": "Engineering"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate department: status %d, want 400", rec.Code)
	}
}

func TestDepartmentRenameCascadesToEmployees(t *testing.T) {
	e, db, _ := newTestServer(t)

	department := model.Department{DepartmentName: "Engineering", DepartmentStatus: "Active"}
	if err := db.Create(&department).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	employees := []model.Employee{
		{EmployeeName: "Alice", DepartmentName: "Engineering", Designation: "Engineer"},
		{EmployeeName: "Bob", DepartmentName: "Engineering", Designation: "Manager"},
		{EmployeeName: "Carol", DepartmentName: "Sales", Designation: "Executive"},
	}
	for i := range employees {
		if err := db.Create(&employees[i]).Error; err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/departments/%d", department.ID), map[string]string{
		"department_name": "Platform Engineering", "department_status": "Active",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename department: status %d, body %s", rec.Code, rec.Body.String())
	}

	var renamed int64
	db.Model(&model.Employee{}).Where("department_name = ?", "Platform Engineering").Count(&renamed)
	if renamed != 2 {
		t.Fatalf("expected 2 employees cascaded, got %d", renamed)
	}
	var untouched model.Employee
	db.First(&untouched, "employee_name = ?", "Carol")
	if untouched.DepartmentName != "Sales" {
		t.Fatalf("unrelated employee touched: %q", untouched.DepartmentName)
	}
}

func TestDepartmentUpdateWithoutRenameSkipsCascade(t *testing.T) {
	e, db, _ := newTestServer(t)

	department := model.Department{DepartmentName: "Engineering", DepartmentStatus: "Active"}
	if err := db.Create(&department).Error; err != nil {
		t.Fatalf("seed department: %v", err)
	}
	employee := model.Employee{EmployeeName: "Alice", DepartmentName: "Engineering"}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/departments/%d", department.ID), map[string]string{
		"department_name": "Engineering", "department_status": "Inactive",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update department: status %d, body %s", rec.Code, rec.Body.String())
	}

	db.First(&department, department.ID)
	if department.DepartmentStatus != "Inactive" {
		t.Fatalf("status not updated: %q", department.DepartmentStatus)
	}
	db.First(&employee, employee.ID)
	if employee.DepartmentName != "Engineering" {
		t.Fatalf("employee changed without rename: %q", employee.DepartmentName)
	}
}

func TestDesignationRenameCascadesToEmployees(t *testing.T) {
	e, db, _ := newTestServer(t)

	designation := model.Designation{Designation: "Engineer", DesignationStatus: "Active"}
	if err := db.Create(&designation).Error; err != nil {
		t.Fatalf("seed designation: %v", err)
	}
	employee := model.Employee{EmployeeName: "Alice", Designation: "Engineer"}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/designations/%d", designation.ID), map[string]string{
		"designation": "Senior Engineer", "designation_status": "Active",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename designation: status %d, body %s", rec.Code, rec.Body.String())
	}

	db.First(&employee, employee.ID)
	if employee.Designation != "Senior Engineer" {
		t.Fatalf("employee designation not cascaded: %q", employee.Designation)
	}
}

func TestDesignationUpdateNotFound(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodPatch, "/designations/424242", map[string]string{"designation": "Ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing designation: status %d, want 404", rec.Code)
	}
}

func TestProjectMasterRenameCascadesToProjectsAndContracts(t *testing.T) {
	e, db, _ := newTestServer(t)

	entry := model.ProjectMaster{ProjectName: "Apollo", ProjectCode: "AP-1", ProjectStatus: "Running"}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed master project: %v", err)
	}
	project := model.Project{ProjectName: "Apollo", CustomerName: "Acme"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	contract := model.Contract{ContractTitle: "Apollo Build", ProjectName: "Apollo", SigningDate: "2024-05-01"}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/projects_master/%d", entry.ID), map[string]string{
		"project_name": "Apollo II", "project_code": "AP-1", "project_status": "Running",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename master project: status %d, body %s", rec.Code, rec.Body.String())
	}

	db.First(&project, project.ID)
	if project.ProjectName != "Apollo II" {
		t.Fatalf("project not cascaded: %q", project.ProjectName)
	}
	db.First(&contract, contract.ID)
	if contract.ProjectName != "Apollo II" {
		t.Fatalf("contract not cascaded: %q", contract.ProjectName)
	}
}

func TestProjectPlainUpdateUnmatchedReportsZeroCounts(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPatch, "/projects/31337", map[string]interface{}{
		"project_name": "Nowhere",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("plain update of missing project: status %d, want 200", rec.Code)
	}
	var resp struct {
		MatchedCount  int64 `json:"matchedCount"`
		ModifiedCount int64 `json:"modifiedCount"`
	}
	decodeBody(t, rec, &resp)
	if resp.MatchedCount != 0 || resp.ModifiedCount != 0 {
		t.Fatalf("expected zero counts, got %+v", resp)
	}
}
