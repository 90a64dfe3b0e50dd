package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/httpresp"
	"github.com/car2go/car2go-api/internal/middleware"
	"github.com/car2go/car2go-api/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type UpdateUserRequest struct {
	LastName  *string `json:"nom"`
	FirstName *string `json:"prenom"`
	Phone     *string `json:"telephone"`
	Address   *string `json:"adresse"`
}

func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("id ASC").Find(&users).Error; err != nil {
		httperr.Internal(c, "user_list_failed", "Erreur lors de la récupération des utilisateurs.")
		return
	}

	httpresp.List(c, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Utilisateur non trouvé.")
		return
	}

	httpresp.OK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	currentID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	if currentID != uint(id) {
		httperr.Forbidden(c, "forbidden", "Accès interdit.")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Utilisateur non trouvé.")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := h.db.Save(&user).Error; err != nil {
		httperr.Internal(c, "user_update_failed", "Erreur lors de la mise à jour.")
		return
	}

	httpresp.OK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	currentID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	if currentID != uint(id) {
		httperr.Forbidden(c, "forbidden", "Accès interdit.")
		return
	}

	res := h.db.Delete(&models.User{}, id)
	if res.Error != nil {
		httperr.Internal(c, "user_delete_failed", "Erreur lors de la suppression.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "user_not_found", "Utilisateur non trouvé.")
		return
	}

	httpresp.OK(c, gin.H{"message": "Utilisateur supprimé"})
}
