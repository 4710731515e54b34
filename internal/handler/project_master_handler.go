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

// ProjectMasterRequest defines the structure for master-list create/update requests
type ProjectMasterRequest struct {
	ProjectName   string `json:"project_name"`
	ProjectCode   string `json:"project_code"`
	ProjectStatus string `json:"project_status"`
}

// ProjectMasterHandler serves the project master-list routes
type ProjectMasterHandler struct {
	db *gorm.DB
}

// NewProjectMasterHandler creates a master-list handler bound to the given database
func NewProjectMasterHandler(db *gorm.DB) *ProjectMasterHandler {
	return &ProjectMasterHandler{db: db}
}

// Create handles inserting a single master-list entry
func (h *ProjectMasterHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project_master", "create")

	var req ProjectMasterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ProjectName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "project_name is required"})
	}

	entry := model.ProjectMaster{
		ProjectName:   req.ProjectName,
		ProjectCode:   req.ProjectCode,
		ProjectStatus: req.ProjectStatus,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Master project already exists", zap.String("project_name", req.ProjectName))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This Project already exists."})
		}
		log.Error("Failed to create master project", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add project."})
	}

	log.Info("Master project created", zap.Uint("id", entry.ID), zap.String("project_name", entry.ProjectName))
	return c.JSON(http.StatusCreated, entry)
}

// List handles the paginated master-list listing with optional search
func (h *ProjectMasterHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project_master", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.ProjectMaster{})
	if search := c.QueryParam("search"); search != "" {
		p := searchPattern(search)
		query = query.Where("LOWER(project_name) LIKE ? OR LOWER(project_code) LIKE ?", p, p)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count master projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch projects"})
	}

	entries := []model.ProjectMaster{}
	if err := query.Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		log.Error("Failed to list master projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch projects"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":           total,
		"page":            page,
		"limit":           limit,
		"totalPages":      totalPages(total, limit),
		"projects_master": entries,
	})
}

// ExportAll handles exporting the whole master list without pagination
func (h *ProjectMasterHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project_master", "export")

	entries := []model.ProjectMaster{}
	if err := h.db.Find(&entries).Error; err != nil {
		log.Error("Failed to export master projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all projects"})
	}
	return c.JSON(http.StatusOK, entries)
}

// Import handles the unordered bulk insert of master-list entries
func (h *ProjectMasterHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project_master", "import")

	var entries []model.ProjectMaster
	if err := c.Bind(&entries); err != nil || len(entries) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of projects"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, entries)

	log.Info("Master projects imported", zap.Int64("inserted", inserted), zap.Int("received", len(entries)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the cascading master-list update. Renaming a master project
// rewrites the denormalized project_name held by projects and contracts
// inside the same transaction.
func (h *ProjectMasterHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project_master", "update")
	id := c.Param("id")

	var req ProjectMasterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var matched, modified int64
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing model.ProjectMaster
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		oldName := existing.ProjectName

		result := tx.Model(&model.ProjectMaster{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"project_name":   req.ProjectName,
			"project_code":   req.ProjectCode,
			"project_status": req.ProjectStatus,
		})
		if result.Error != nil {
			return result.Error
		}
		matched, modified = 1, result.RowsAffected

		if oldName != req.ProjectName {
			if err := tx.Model(&model.Project{}).Where("project_name = ?", oldName).
				Update("project_name", req.ProjectName).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Contract{}).Where("project_name = ?", oldName).
				Update("project_name", req.ProjectName).Error; err != nil {
				return err
			}
			prometheus.RecordRenameCascade("project_master")
			log.Info("Master project rename cascaded",
				zap.String("old_name", oldName),
				zap.String("new_name", req.ProjectName))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Project not found"})
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This Project already exists."})
		}
		log.Error("Failed to update master project", zap.String("project_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update projects_master and related projects."})
	}

	return c.JSON(http.StatusOK, echo.Map{"matchedCount": matched, "modifiedCount": modified})
}
