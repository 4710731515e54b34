package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/config"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allowedContractFileExts is the upload allow-list: images and PDFs only.
var allowedContractFileExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".pdf":  true,
}

// ContractRequest defines the structure for contract update requests
type ContractRequest struct {
	ContractTitle  string `json:"contract_title"`
	RefNo          string `json:"refNo"`
	FirstParty     string `json:"first_party"`
	SigningDate    string `json:"signing_date"`
	EffectiveDate  string `json:"effective_date"`
	ClosingDate    string `json:"closing_date"`
	ScanCopyStatus string `json:"scan_copy_status"`
	HardCopyStatus string `json:"hard_copy_status"`
}

// ContractHandler serves the contract routes
type ContractHandler struct {
	db     *gorm.DB
	upload config.UploadConfig
}

// NewContractHandler creates a contract handler bound to the given database
// and upload settings
func NewContractHandler(db *gorm.DB, upload config.UploadConfig) *ContractHandler {
	return &ContractHandler{db: db, upload: upload}
}

// contractStatusFor derives the stored status code from a YYYY-MM-DD closing
// date. A contract is active only while its closing date is strictly after
// today; same-day closings and unparsable dates count as expired. The same
// rule runs at intake, update and read time.
func contractStatusFor(closingDate string, now time.Time) string {
	d, err := time.Parse("2006-01-02", closingDate)
	if err != nil {
		return model.ContractExpired
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return model.ContractActive
	}
	return model.ContractExpired
}

// translateCategory maps the human-readable category filter to its stored code
func translateCategory(v string) int {
	switch v {
	case "Service":
		return model.CategoryService
	case "Product":
		return model.CategoryProduct
	default:
		return model.CategoryOther
	}
}

// translateContractStatus maps the human-readable status filter to its stored code
func translateContractStatus(v string) string {
	if v == "Expired" {
		return model.ContractExpired
	}
	return model.ContractActive
}

// Create handles contract intake: a multipart form with the contract fields
// plus one contract_file part. The referenced project must exist; its name,
// customer and category are copied into the contract.
func (h *ContractHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "create")

	file, err := c.FormFile("contract_file")
	if err != nil {
		prometheus.RecordContractUpload("missing")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contract_file is required"})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedContractFileExts[ext] {
		prometheus.RecordContractUpload("rejected_type")
		log.Warn("Rejected contract file type", zap.String("filename", file.Filename))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Only images and PDFs are allowed!"})
	}
	if file.Size > h.upload.MaxSizeByte {
		prometheus.RecordContractUpload("rejected_size")
		log.Warn("Rejected oversized contract file",
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File too large"})
	}

	projectID, err := strconv.ParseUint(c.FormValue("project_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid project reference"})
	}
	var project model.Project
	if err := h.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Contract references unknown project", zap.Uint64("project_id", projectID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid project reference"})
		}
		log.Error("Failed to resolve project reference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add contract."})
	}

	storedName, err := h.saveContractFile(file)
	if err != nil {
		prometheus.RecordContractUpload("failed")
		log.Error("Failed to store contract file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to store contract file."})
	}
	prometheus.RecordContractUpload("stored")

	closingDate := c.FormValue("closing_date")
	contract := model.Contract{
		ContractTitle:   c.FormValue("contract_title"),
		ProjectID:       project.ID,
		ProjectName:     project.ProjectName,
		CustomerName:    project.CustomerName,
		ProjectCategory: project.ProjectCategory,
		RefNo:           c.FormValue("refNo"),
		FirstParty:      c.FormValue("first_party"),
		SigningDate:     c.FormValue("signing_date"),
		EffectiveDate:   c.FormValue("effective_date"),
		ClosingDate:     closingDate,
		ScanCopyStatus:  c.FormValue("scan_copy_status"),
		HardCopyStatus:  c.FormValue("hard_copy_status"),
		ContractStatus:  contractStatusFor(closingDate, time.Now()),
		ContractFile:    storedName,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&contract).Error; err != nil {
		log.Error("Failed to create contract", zap.String("contract_title", contract.ContractTitle), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add contract."})
	}

	log.Info("Contract created",
		zap.Uint("id", contract.ID),
		zap.String("contract_title", contract.ContractTitle),
		zap.Uint("project_id", contract.ProjectID),
		zap.String("contract_file", contract.ContractFile))
	return c.JSON(http.StatusCreated, contract)
}

// saveContractFile writes the upload to the upload directory under a
// timestamp-based name, keeping the original extension.
func (h *ContractHandler) saveContractFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), strings.ToLower(filepath.Ext(file.Filename)))
	dst, err := os.Create(filepath.Join(h.upload.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

// View handles fetching one contract by ID with a read-time status recompute
func (h *ContractHandler) View(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "view")
	id := c.Param("id")

	var contract model.Contract
	if err := h.db.First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Contract not found"})
		}
		log.Error("Failed to fetch contract", zap.String("contract_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch contract"})
	}
	contract.ContractStatus = contractStatusFor(contract.ClosingDate, time.Now())
	return c.JSON(http.StatusOK, contract)
}

// filteredQuery applies the contract list filters on top of the
// contract-to-project join.
func (h *ContractHandler) filteredQuery(c echo.Context) *gorm.DB {
	query := h.db.Model(&model.Contract{}).
		Joins("LEFT JOIN projects ON projects.id = contracts.project_id")

	if v := c.QueryParam("project_category"); v != "" {
		query = query.Where("projects.project_category = ?", translateCategory(v))
	}
	if v := c.QueryParam("contractStatus"); v != "" {
		query = query.Where("contracts.contract_status = ?", translateContractStatus(v))
	}
	if v := c.QueryParam("project_name"); v != "" {
		query = query.Where("LOWER(contracts.project_name) LIKE ?", searchPattern(v))
	}
	if v := c.QueryParam("customer_name"); v != "" {
		query = query.Where("LOWER(contracts.customer_name) LIKE ?", searchPattern(v))
	}
	return query
}

// List handles the paginated contract listing: joined to projects, filtered,
// sorted by signing date descending, status recomputed at read time.
func (h *ContractHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "list")
	page, limit, offset := parsePagination(c)

	query := h.filteredQuery(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count contracts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch contracts"})
	}

	contracts := []model.Contract{}
	if err := query.Select("contracts.*").
		Order("contracts.signing_date DESC").
		Offset(offset).Limit(limit).
		Find(&contracts).Error; err != nil {
		log.Error("Failed to list contracts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch contracts"})
	}

	now := time.Now()
	for i := range contracts {
		contracts[i].ContractStatus = contractStatusFor(contracts[i].ClosingDate, now)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages(total, limit),
		"contracts":  contracts,
	})
}

// ExportAll handles exporting every contract without pagination, with the
// same join, filters and read-time status recompute as List
func (h *ContractHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "export")

	contracts := []model.Contract{}
	if err := h.filteredQuery(c).Select("contracts.*").
		Order("contracts.signing_date DESC").
		Find(&contracts).Error; err != nil {
		log.Error("Failed to export contracts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all contracts"})
	}

	now := time.Now()
	for i := range contracts {
		contracts[i].ContractStatus = contractStatusFor(contracts[i].ClosingDate, now)
	}
	return c.JSON(http.StatusOK, contracts)
}

// Import handles the unordered bulk insert of contracts. The status of each
// record is derived from its closing date on the way in.
func (h *ContractHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "import")

	var contracts []model.Contract
	if err := c.Bind(&contracts); err != nil || len(contracts) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of contracts"})
	}

	now := time.Now()
	for i := range contracts {
		contracts[i].ContractStatus = contractStatusFor(contracts[i].ClosingDate, now)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, contracts)

	log.Info("Contracts imported", zap.Int64("inserted", inserted), zap.Int("received", len(contracts)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the plain contract field update. The stored status is
// recomputed from the submitted closing date; the file and project reference
// are not touched.
func (h *ContractHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("contract", "update")
	id := c.Param("id")

	var req ContractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.Contract{}).Where("id = ?", id).Updates(map[string]interface{}{
		"contract_title":   req.ContractTitle,
		"ref_no":           req.RefNo,
		"first_party":      req.FirstParty,
		"signing_date":     req.SigningDate,
		"effective_date":   req.EffectiveDate,
		"closing_date":     req.ClosingDate,
		"scan_copy_status": req.ScanCopyStatus,
		"hard_copy_status": req.HardCopyStatus,
		"contract_status":  contractStatusFor(req.ClosingDate, time.Now()),
	})
	if result.Error != nil {
		log.Error("Failed to update contract", zap.String("contract_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update contract."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"matchedCount":  result.RowsAffected,
		"modifiedCount": result.RowsAffected,
	})
}
