package handler

import (
	"net/http"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectRequest defines the structure for project create/update requests
type ProjectRequest struct {
	ProjectName     string `json:"project_name"`
	CustomerName    string `json:"customer_name"`
	ProjectCategory int    `json:"project_category"`
	Department      string `json:"department"`
	HOD             string `json:"hod"`
	PM              string `json:"pm"`
	Year            string `json:"year"`
	Phase           string `json:"phase"`
	ProjectCode     string `json:"project_code"`
}

// ProjectHandler serves the project routes
type ProjectHandler struct {
	db *gorm.DB
}

// NewProjectHandler creates a project handler bound to the given database
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{db: db}
}

// Create handles inserting a single project
func (h *ProjectHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project", "create")

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	project := model.Project{
		ProjectName:     req.ProjectName,
		CustomerName:    req.CustomerName,
		ProjectCategory: req.ProjectCategory,
		Department:      req.Department,
		HOD:             req.HOD,
		PM:              req.PM,
		Year:            req.Year,
		Phase:           req.Phase,
		ProjectCode:     req.ProjectCode,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&project).Error; err != nil {
		log.Error("Failed to create project", zap.String("project_name", req.ProjectName), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add project."})
	}

	log.Info("Project created", zap.Uint("id", project.ID), zap.String("project_name", project.ProjectName))
	return c.JSON(http.StatusCreated, project)
}

// List handles the paginated project listing with optional search
func (h *ProjectHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.Project{})
	if search := c.QueryParam("search"); search != "" {
		p := searchPattern(search)
		query = query.Where(
			"LOWER(project_name) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(project_code) LIKE ?",
			p, p, p)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch projects"})
	}

	projects := []model.Project{}
	if err := query.Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch projects"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages(total, limit),
		"projects":   projects,
	})
}

// ExportAll handles exporting every project without pagination
func (h *ProjectHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project", "export")

	projects := []model.Project{}
	if err := h.db.Find(&projects).Error; err != nil {
		log.Error("Failed to export projects", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all projects"})
	}
	return c.JSON(http.StatusOK, projects)
}

// Import handles the unordered bulk insert of projects
func (h *ProjectHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project", "import")

	var projects []model.Project
	if err := c.Bind(&projects); err != nil || len(projects) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of projects"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, projects)

	log.Info("Projects imported", zap.Int64("inserted", inserted), zap.Int("received", len(projects)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the plain project field update. Projects have no dependent
// denormalized copies, so unmatched IDs report zero counts rather than 404.
func (h *ProjectHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("project", "update")
	id := c.Param("id")

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"project_name":     req.ProjectName,
		"customer_name":    req.CustomerName,
		"project_category": req.ProjectCategory,
		"department":       req.Department,
		"hod":              req.HOD,
		"pm":               req.PM,
		"year":             req.Year,
		"phase":            req.Phase,
		"project_code":     req.ProjectCode,
	})
	if result.Error != nil {
		log.Error("Failed to update project", zap.String("project_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update project."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"matchedCount":  result.RowsAffected,
		"modifiedCount": result.RowsAffected,
	})
}
