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
	"gorm.io/gorm"
)

// DepartmentRequest defines the structure for department create/update requests
type DepartmentRequest struct {
	DepartmentName   string `json:"department_name"`
	DepartmentStatus string `json:"department_status"`
}

// DepartmentHandler serves the department routes
type DepartmentHandler struct {
	db *gorm.DB
}

// NewDepartmentHandler creates a department handler bound to the given database
func NewDepartmentHandler(db *gorm.DB) *DepartmentHandler {
	return &DepartmentHandler{db: db}
}

// Create handles inserting a single department
func (h *DepartmentHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("department", "create")

	var req DepartmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.DepartmentName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "department_name is required"})
	}

	department := model.Department{
		DepartmentName:   req.DepartmentName,
		DepartmentStatus: req.DepartmentStatus,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Department already exists", zap.String("department_name", req.DepartmentName))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Department already exists."})
		}
		log.Error("Failed to create department", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add department."})
	}

	log.Info("Department created", zap.Uint("id", department.ID), zap.String("department_name", department.DepartmentName))
	return c.JSON(http.StatusCreated, department)
}

// List handles the paginated department listing with optional search
func (h *DepartmentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("department", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.Department{})
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("LOWER(department_name) LIKE ?", searchPattern(search))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count departments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch departments"})
	}

	departments := []model.Department{}
	if err := query.Offset(offset).Limit(limit).Find(&departments).Error; err != nil {
		log.Error("Failed to list departments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch departments"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":       total,
		"page":        page,
		"limit":       limit,
		"totalPages":  totalPages(total, limit),
		"departments": departments,
	})
}

// ExportAll handles exporting every department without pagination
func (h *DepartmentHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("department", "export")

	departments := []model.Department{}
	if err := h.db.Find(&departments).Error; err != nil {
		log.Error("Failed to export departments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all departments"})
	}
	return c.JSON(http.StatusOK, departments)
}

// Import handles the unordered bulk insert of departments
func (h *DepartmentHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("department", "import")

	var departments []model.Department
	if err := c.Bind(&departments); err != nil || len(departments) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of departments"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, departments)

	log.Info("Departments imported", zap.Int64("inserted", inserted), zap.Int("received", len(departments)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the cascading department update. A department rename
// rewrites the denormalized department_name held by employees inside the
// same transaction.
func (h *DepartmentHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("department", "update")
	id := c.Param("id")

	var req DepartmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var matched, modified int64
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Department
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		oldName := existing.DepartmentName

		result := tx.Model(&model.Department{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"department_name":   req.DepartmentName,
			"department_status": req.DepartmentStatus,
		})
		if result.Error != nil {
			return result.Error
		}
		matched, modified = 1, result.RowsAffected

		if oldName != req.DepartmentName {
			if err := tx.Model(&model.Employee{}).Where("department_name = ?", oldName).
				Update("department_name", req.DepartmentName).Error; err != nil {
				return err
			}
			prometheus.RecordRenameCascade("department")
			log.Info("Department rename cascaded",
				zap.String("old_name", oldName),
				zap.String("new_name", req.DepartmentName))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Department not found"})
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Department already exists."})
		}
		log.Error("Failed to update department", zap.String("department_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update department and related employees."})
	}

	return c.JSON(http.StatusOK, echo.Map{"matchedCount": matched, "modifiedCount": modified})
}
