package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/car2go/car2go-api/internal/config"
	"github.com/car2go/car2go-api/internal/models"
	"github.com/car2go/car2go-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

// --------- Requests ---------

type RegisterRequest struct {
	LastName  string `json:"nom" binding:"required"`
	FirstName string `json:"prenom" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"telephone" binding:"required"`
	Address   string `json:"adresse" binding:"required"`
	BirthDate string `json:"date_naissance" binding:"required"`

	Role          string  `json:"role" binding:"required"`
	LicenseDate   *string `json:"license_date"`
	LicenseNumber *string `json:"numero_permis"`
	BookletNumber *string `json:"numero_livret"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_birth_date"})
		return
	}

	var licenseDate *time.Time
	if req.LicenseDate != nil && *req.LicenseDate != "" {
		d, err := time.Parse("2006-01-02", *req.LicenseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_license_date"})
			return
		}
		licenseDate = &d
	}

	if code := validators.CheckRoleFields(validators.RoleFields{
		Role:          req.Role,
		LicenseNumber: req.LicenseNumber,
		LicenseDate:   licenseDate,
		BookletNumber: req.BookletNumber,
	}); code != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": code})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "Le domaine de l'adresse e-mail ne semble pas valide.",
		})
		return
	}

	var count int64
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	user := models.User{
		LastName:     req.LastName,
		FirstName:    req.FirstName,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Address:      req.Address,
		BirthDate:    birthDate,
		Role:         req.Role,
		LicenseDate:  licenseDate,
	}

	// Only keep the fields matching the role, like the users table expects.
	if req.Role == models.RoleCompanion {
		user.LicenseNumber = req.LicenseNumber
	} else {
		user.BookletNumber = req.BookletNumber
		user.LicenseDate = nil
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_user"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":     user.ID,
			"nom":    user.LastName,
			"prenom": user.FirstName,
			"email":  user.Email,
			"role":   user.Role,
		},
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":     user.ID,
			"nom":    user.LastName,
			"prenom": user.FirstName,
			"email":  user.Email,
			"role":   user.Role,
		},
		"access_token": token,
		"token_type":   "bearer",
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
