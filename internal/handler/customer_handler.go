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

// CustomerRequest defines the structure for customer create/update requests
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Status  string `json:"status"`
}

// CustomerHandler serves the customer routes
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler creates a customer handler bound to the given database
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// Create handles inserting a single customer
func (h *CustomerHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("customer", "create")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	customer := model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Status:  req.Status,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Customer already exists", zap.String("name", req.Name))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Customer already exists."})
		}
		log.Error("Failed to create customer", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add customer."})
	}

	log.Info("Customer created", zap.Uint("id", customer.ID), zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// List handles the paginated customer listing with optional search
func (h *CustomerHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("customer", "list")
	page, limit, offset := parsePagination(c)

	query := h.db.Model(&model.Customer{})
	if search := c.QueryParam("search"); search != "" {
		p := searchPattern(search)
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ? OR LOWER(address) LIKE ?",
			p, p, p, p)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch customers"})
	}

	customers := []model.Customer{}
	if err := query.Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		log.Error("Failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch customers"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages(total, limit),
		"customers":  customers,
	})
}

// ExportAll handles exporting every customer without pagination
func (h *CustomerHandler) ExportAll(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("customer", "export")

	customers := []model.Customer{}
	if err := h.db.Find(&customers).Error; err != nil {
		log.Error("Failed to export customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch all customers"})
	}
	return c.JSON(http.StatusOK, customers)
}

// Import handles the unordered bulk insert of customers
func (h *CustomerHandler) Import(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("customer", "import")

	var customers []model.Customer
	if err := c.Bind(&customers); err != nil || len(customers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Expected an array of customers"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted := insertUnordered(h.db, customers)

	log.Info("Customers imported", zap.Int64("inserted", inserted), zap.Int("received", len(customers)))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "insertedCount": inserted})
}

// Update handles the cascading customer update. A customer rename rewrites
// the denormalized customer_name held by projects and contracts inside the
// same transaction.
func (h *CustomerHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordResourceOperation("customer", "update")
	id := c.Param("id")

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var matched, modified int64
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Customer
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotFound
			}
			return err
		}
		oldName := existing.Name

		result := tx.Model(&model.Customer{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"name":    req.Name,
			"phone":   req.Phone,
			"email":   req.Email,
			"address": req.Address,
			"status":  req.Status,
		})
		if result.Error != nil {
			return result.Error
		}
		matched, modified = 1, result.RowsAffected

		if oldName != req.Name {
			if err := tx.Model(&model.Project{}).Where("customer_name = ?", oldName).
				Update("customer_name", req.Name).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Contract{}).Where("customer_name = ?", oldName).
				Update("customer_name", req.Name).Error; err != nil {
				return err
			}
			prometheus.RecordRenameCascade("customer")
			log.Info("Customer rename cascaded",
				zap.String("old_name", oldName),
				zap.String("new_name", req.Name))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Customer already exists."})
		}
		log.Error("Failed to update customer", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer and related projects."})
	}

	return c.JSON(http.StatusOK, echo.Map{"matchedCount": matched, "modifiedCount": modified})
}
