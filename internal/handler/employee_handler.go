package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EmployeeRequest defines the structure for employee create/update requests
type EmployeeRequest struct {
	EmployeeName   string `json:"employee_name"`
	DepartmentName string `json:"department_name"`
	Designation    string `json:"designation"`
	Phone          string `json:"employee_phone"`
	Email          string `json:"employee_email"`
	UID            string `json:"employee_uid"`
	Pass           string `json:"employee_pass"`
}

// EmployeeHandler serves the employee routes
type EmployeeHandler struct {
	db *gorm.DB
}

// NewEmployeeHandler creates an employee handler bound to the given database
func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler {
	return &EmployeeHandler{db: db}
}

// Create handles inserting a single employee. The password is stored as a
// bcrypt hash.
func (h *EmployeeHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("employee", "create")

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.EmployeeName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_name is required"})
	}

	employee := model.Employee{
		EmployeeName:   req.EmployeeName,
		DepartmentName: req.DepartmentName,
		Designation:    req.Designation,
		Phone:          req.Phone,
		Email:          req.Email,
		UID:            req.UID,
	}
	if req.Pass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Pass), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add employee."})
		}
		employee.Pass = string(hash)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Employee already exists", zap.String("employee_name", req.EmployeeName))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This Employee already exists."})
		}
		log.Error("Failed to create employee", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add employee."})
	}

	log.Info("Employee created", zap.Uint("id", employee.ID), zap.String("employee_name", employee.EmployeeName))
	return c.JSON(http.StatusCreated, employee)
}

// List handles the paginated employee listing with optional search
func (h *EmployeeHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("employee", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.Employee{})
	if search := c.QueryParam("search"); search != "" {
		p := searchPattern(search)
		query = query.Where(
			"LOWER(employee_name) LIKE ? OR LOWER(department_name) LIKE ? OR LOWER(designation) LIKE ?",
			p, p, p)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count employees", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch employees"})
	}

	employees := []model.Employee{}
	if err := query.Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		log.Error("Failed to list employees", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch employees"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages(total, limit),
		"employees":  employees,
	})
}

// ExportAll handles exporting every employee without pagination
func (h *EmployeeHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("employee", "export")

	employees := []model.Employee{}
	if err := h.db.Find(&employees).Error; err != nil {
		log.Error("Failed to export employees", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all employees"})
	}
	return c.JSON(http.StatusOK, employees)
}

// Import handles the unordered bulk insert of employees. Plaintext passwords
// in the batch are hashed before insert.
func (h *EmployeeHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("employee", "import")

	var reqs []EmployeeRequest
	if err := c.Bind(&reqs); err != nil || len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of employees"})
	}

	employees := make([]model.Employee, 0, len(reqs))
	for _, req := range reqs {
		employee := model.Employee{
			EmployeeName:   req.EmployeeName,
			DepartmentName: req.DepartmentName,
			Designation:    req.Designation,
			Phone:          req.Phone,
			Email:          req.Email,
			UID:            req.UID,
		}
		if req.Pass != "" {
			if hash, err := bcrypt.GenerateFromPassword([]byte(req.Pass), bcrypt.DefaultCost); err == nil {
				employee.Pass = string(hash)
			}
		}
		employees = append(employees, employee)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, employees)

	log.Info("Employees imported", zap.Int64("inserted", inserted), zap.Int("received", len(reqs)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the plain employee field update. Employee records have no
// dependents, so no cascade runs and unmatched IDs report zero counts.
func (h *EmployeeHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("employee", "update")
	id := c.Param("id")

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	fields := map[string]interface{}{
		"employee_name":   req.EmployeeName,
		"department_name": req.DepartmentName,
		"designation":     req.Designation,
		"employee_phone":  req.Phone,
		"employee_email":  req.Email,
		"employee_uid":    req.UID,
	}
	if req.Pass != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Pass), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update employee."})
		}
		fields["employee_pass"] = string(hash)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Employee{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This Employee already exists."})
		}
		log.Error("Failed to update employee", zap.String("employee_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update employee."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"matchedCount":  result.RowsAffected,
		"modifiedCount": result.RowsAffected,
	})
}
