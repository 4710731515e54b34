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

// DesignationRequest defines the structure for designation create/update requests
type DesignationRequest struct {
	Designation       string `json:"designation"`
	DesignationStatus string `json:"designation_status"`
}

// DesignationHandler serves the designation routes
type DesignationHandler struct {
	db *gorm.DB
}

// NewDesignationHandler creates a designation handler bound to the given database
func NewDesignationHandler(db *gorm.DB) *DesignationHandler {
	return &DesignationHandler{db: db}
}

// Create handles inserting a single designation
func (h *DesignationHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("designation", "create")

	var req DesignationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Designation == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "designation is required"})
	}

	designation := model.Designation{
		Designation:       req.Designation,
		DesignationStatus: req.DesignationStatus,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&designation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Designation already exists", zap.String("designation", req.Designation))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Designation already exists."})
		}
		log.Error("Failed to create designation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add designation."})
	}

	log.Info("Designation created", zap.Uint("id", designation.ID), zap.String("designation", designation.Designation))
	return c.JSON(http.StatusCreated, designation)
}

// List handles the paginated designation listing with optional search
func (h *DesignationHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("designation", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.Designation{})
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("LOWER(designation) LIKE ?", searchPattern(search))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count designations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch designations"})
	}

	designations := []model.Designation{}
	if err := query.Offset(offset).Limit(limit).Find(&designations).Error; err != nil {
		log.Error("Failed to list designations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch designations"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":        total,
		"page":         page,
		"limit":        limit,
		"totalPages":   totalPages(total, limit),
		"designations": designations,
	})
}

// ExportAll handles exporting every designation without pagination
func (h *DesignationHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("designation", "export")

	designations := []model.Designation{}
	if err := h.db.Find(&designations).Error; err != nil {
		log.Error("Failed to export designations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all designations"})
	}
	return c.JSON(http.StatusOK, designations)
}

// Import handles the unordered bulk insert of designations
func (h *DesignationHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("designation", "import")

	var designations []model.Designation
	if err := c.Bind(&designations); err != nil || len(designations) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of designations"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, designations)

	log.Info("Designations imported", zap.Int64("inserted", inserted), zap.Int("received", len(designations)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the cascading designation update. A designation rename
// rewrites the denormalized designation held by employees inside the same
// transaction.
func (h *DesignationHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("designation", "update")
	id := c.Param("id")

	var req DesignationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var matched, modified int64
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Designation
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		oldName := existing.Designation

		result := tx.Model(&model.Designation{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"designation":        req.Designation,
			"designation_status": req.DesignationStatus,
		})
		if result.Error != nil {
			return result.Error
		}
		matched, modified = 1, result.RowsAffected

		if oldName != req.Designation {
			if err := tx.Model(&model.Employee{}).Where("designation = ?", oldName).
				Update("designation", req.Designation).Error; err != nil {
				return err
			}
			prometheus.RecordRenameCascade("designation")
			log.Info("Designation rename cascaded",
				zap.String("old_name", oldName),
				zap.String("new_name", req.Designation))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Designation not found"})
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Designation already exists."})
		}
		log.Error("Failed to update designation", zap.String("designation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update designation and related employees."})
	}

	return c.JSON(http.StatusOK, echo.Map{"matchedCount": matched, "modifiedCount": modified})
}
