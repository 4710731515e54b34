package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

func TestCustomerCreateAndDuplicate(t *testing.T) {
	e, db, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/customers", map[string]string{
		"name": "Acme", "phone": "123", "email": "a@acme.test", "address": "HQ", "status": "Active",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/customers", map[string]string{"name": "Acme"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate customer: status %d, want 400", rec.Code)
	}

	var count int64
	db.Model(&model.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one customer, got %d", count)
	}
}

func TestCustomerListPaginationEnvelope(t *testing.T) {
	e, db, _ := newTestServer(t)
	for i := 0; i < 25; i++ {
		seedCustomers(t, db, fmt.Sprintf("Customer %02d", i))
	}

	var resp struct {
		Total      int64            `json:"total"`
		Page       int              `json:"page"`
		Limit      int              `json:"limit"`
		TotalPages int64            `json:"totalPages"`
		Customers  []model.Customer `json:"customers"`
	}

	rec := doJSON(t, e, http.MethodGet, "/customers?page=2&limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list customers: status %d", rec.Code)
	}
	decodeBody(t, rec, &resp)
	if resp.Total != 25 || resp.Page != 2 || resp.Limit != 10 || resp.TotalPages != 3 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if len(resp.Customers) != 10 {
		t.Fatalf("expected 10 customers on page 2, got %d", len(resp.Customers))
	}

	rec = doJSON(t, e, http.MethodGet, "/customers?page=3&limit=10", nil)
	decodeBody(t, rec, &resp)
	if len(resp.Customers) != 5 {
		t.Fatalf("expected 5 customers on page 3, got %d", len(resp.Customers))
	}

	// Defaults: page 1, limit 10
	rec = doJSON(t, e, http.MethodGet, "/customers", nil)
	decodeBody(t, rec, &resp)
	if resp.Page != 1 || resp.Limit != 10 || len(resp.Customers) != 10 {
		t.Fatalf("unexpected default pagination: %+v", resp)
	}
}

func TestCustomerListSearch(t *testing.T) {
	e, db, _ := newTestServer(t)
	seedCustomers(t, db, "Globex Corporation", "Initech", "Acme")

	var resp struct {
		Total     int64            `json:"total"`
		Customers []model.Customer `json:"customers"`
	}
	rec := doJSON(t, e, http.MethodGet, "/customers?search=GLOBEX", nil)
	decodeBody(t, rec, &resp)
	if resp.Total != 1 || len(resp.Customers) != 1 || resp.Customers[0].Name != "Globex Corporation" {
		t.Fatalf("search mismatch: %+v", resp)
	}
}

func TestCustomerImportPartialSuccess(t *testing.T) {
	e, db, _ := newTestServer(t)
	seedCustomers(t, db, "Acme")

	rec := doJSON(t, e, http.MethodPost, "/customers/all", []map[string]string{
		{"name": "Globex"},
		{"name": "Acme"}, // duplicate, skipped
		{"name": "Initech"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import customers: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success       bool  `json:"success"`
		InsertedCount int64 `json:"insertedCount"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.InsertedCount != 2 {
		t.Fatalf("expected insertedCount 2, got %+v", resp)
	}

	var count int64
	db.Model(&model.Customer{}).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 customers after import, got %d", count)
	}
}

func TestCustomerImportRejectsBadPayload(t *testing.T) {
	e, _, _ := newTestServer(t)

	if rec := doJSON(t, e, http.MethodPost, "/customers/all", map[string]string{"name": "X"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("object payload: status %d, want 400", rec.Code)
	}
	if rec := doJSON(t, e, http.MethodPost, "/customers/all", []map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty array: status %d, want 400", rec.Code)
	}
}

func TestCustomerRenameCascades(t *testing.T) {
	e, db, _ := newTestServer(t)
	customers := seedCustomers(t, db, "Acme", "Globex")

	for _, p := range []model.Project{
		{ProjectName: "Alpha", CustomerName: "Acme"},
		{ProjectName: "Beta", CustomerName: "Globex"},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}
	contract := model.Contract{ContractTitle: "Alpha Support", CustomerName: "Acme", SigningDate: "2024-01-01"}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/customers/%d", customers[0].ID), map[string]string{
		"name": "Acme Industries", "status": "Active",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename customer: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		MatchedCount  int64 `json:"matchedCount"`
		ModifiedCount int64 `json:"modifiedCount"`
	}
	decodeBody(t, rec, &resp)
	if resp.MatchedCount != 1 || resp.ModifiedCount != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}

	var project model.Project
	db.First(&project, "project_name = ?", "Alpha")
	if project.CustomerName != "Acme Industries" {
		t.Fatalf("project not cascaded: %q", project.CustomerName)
	}
	db.First(&contract, contract.ID)
	if contract.CustomerName != "Acme Industries" {
		t.Fatalf("contract not cascaded: %q", contract.CustomerName)
	}

	var untouched model.Project
	db.First(&untouched, "project_name = ?", "Beta")
	if untouched.CustomerName != "Globex" {
		t.Fatalf("unrelated project touched: %q", untouched.CustomerName)
	}
}

func TestCustomerUpdateNotFound(t *testing.T) {
	e, _, _ := newTestServer(t)
	rec := doJSON(t, e, http.MethodPatch, "/customers/9999", map[string]string{"name": "Nobody"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing customer: status %d, want 404", rec.Code)
	}
}

func TestCustomerRenameToExistingNameRollsBack(t *testing.T) {
	e, db, _ := newTestServer(t)
	customers := seedCustomers(t, db, "Acme", "Globex")

	project := model.Project{ProjectName: "Alpha", CustomerName: "Acme"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	// Renaming onto an existing unique name fails inside the transaction.
	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/customers/%d", customers[0].ID), map[string]string{
		"name": "Globex",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate rename: status %d, want 400", rec.Code)
	}

	var customer model.Customer
	db.First(&customer, customers[0].ID)
	if customer.Name != "Acme" {
		t.Fatalf("primary record changed despite failure: %q", customer.Name)
	}
	db.First(&project, project.ID)
	if project.CustomerName != "Acme" {
		t.Fatalf("dependent changed despite failure: %q", project.CustomerName)
	}
}

func TestCustomerRenameDependentFailureRollsBack(t *testing.T) {
	e, db, _ := newTestServer(t)
	customers := seedCustomers(t, db, "Acme")

	project := model.Project{ProjectName: "Alpha", CustomerName: "Acme"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	contract := model.Contract{ContractTitle: "Alpha Support", CustomerName: "Acme", SigningDate: "2024-01-01"}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}

	// Force the contract leg of the cascade to fail; the customer and
	// project writes that ran before it must roll back.
	if err := db.Callback().Update().Before("gorm:update").Register("fail_contract_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "contracts" {
			tx.AddError(errors.New("forced contract update failure"))
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer db.Callback().Update().Remove("fail_contract_updates")

	rec := doJSON(t, e, http.MethodPatch, fmt.Sprintf("/customers/%d", customers[0].ID), map[string]string{
		"name": "Acme Industries",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("forced failure: status %d, want 500", rec.Code)
	}

	var customer model.Customer
	db.First(&customer, customers[0].ID)
	if customer.Name != "Acme" {
		t.Fatalf("customer committed despite cascade failure: %q", customer.Name)
	}
	db.First(&project, project.ID)
	if project.CustomerName != "Acme" {
		t.Fatalf("project committed despite cascade failure: %q", project.CustomerName)
	}
}

func TestCustomerExportAll(t *testing.T) {
	e, db, _ := newTestServer(t)
	seedCustomers(t, db, "Acme", "Globex", "Initech")

	rec := doJSON(t, e, http.MethodGet, "/customers/all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export customers: status %d", rec.Code)
	}
	var customers []model.Customer
	decodeBody(t, rec, &customers)
	if len(customers) != 3 {
		t.Fatalf("expected 3 exported customers, got %d", len(customers))
	}
}
