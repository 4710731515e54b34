package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/model"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves registration and login
type AuthHandler struct {
	db *gorm.DB
}

// NewAuthHandler creates an auth handler bound to the given database
func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Register creates an employee account. It is the public bootstrap path; the
// protected employee routes cover everything else.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.EmployeeName == "" || req.UID == "" || req.Pass == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_name, employee_uid and employee_pass are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	employee := model.Employee{
		EmployeeName:   req.EmployeeName,
		DepartmentName: req.DepartmentName,
		Designation:    req.Designation,
		Phone:          req.Phone,
		Email:          req.Email,
		UID:            req.UID,
		Pass:           string(hash),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.db.Create(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "This Employee already exists."})
		}
		log.Error("Failed to register employee", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Employee registered", zap.Uint("id", employee.ID), zap.String("employee_uid", employee.UID))
	return c.JSON(http.StatusCreated, employee)
}

// Login verifies employee credentials and issues a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		UID  string `json:"uid"`
		Pass string `json:"pass"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var employee model.Employee
	if err := h.db.Where("employee_uid = ?", req.UID).First(&employee).Error; err != nil {
		log.Warn("Login for unknown uid", zap.String("uid", req.UID))
		prometheus.RecordAuthError("employee_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.Pass), []byte(req.Pass)); err != nil {
		log.Warn("Invalid password", zap.String("uid", req.UID))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(employee.ID, employee.EmployeeName, employee.UID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("Employee logged in", zap.Uint("id", employee.ID), zap.String("uid", employee.UID))
	return c.JSON(http.StatusOK, echo.Map{"token": token, "employee": employee})
}
