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

type SupervisionHandler struct {
	db *gorm.DB
}

func NewSupervisionHandler(db *gorm.DB) *SupervisionHandler {
	return &SupervisionHandler{db: db}
}

type CreateSupervisionRequest struct {
	ApprenticeID uint   `json:"apprenti_id"`
	CompanionID  uint   `json:"accompagnateur_id"`
	Relationship string `json:"lien"`
}

// Create pairs an apprentice with a companion. The authenticated user
// fills their own side of the pair; the request names the other one.
func (h *SupervisionHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role := c.MustGet(middleware.ContextUserRole).(string)

	var req CreateSupervisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	var apprenticeID, companionID uint
	switch role {
	case models.RoleApprentice:
		apprenticeID = userID
		companionID = req.CompanionID
	case models.RoleCompanion:
		apprenticeID = req.ApprenticeID
		companionID = userID
	default:
		httperr.Forbidden(c, "forbidden", "Seuls les apprentis et accompagnateurs peuvent créer une association.")
		return
	}

	var apprentice models.User
	if err := h.db.
		Where("id = ? AND role = ?", apprenticeID, models.RoleApprentice).
		First(&apprentice).Error; err != nil {
		httperr.BadRequest(c, "invalid_apprentice", "L'utilisateur indiqué n'a pas le rôle 'apprenti'.")
		return
	}

	var companion models.User
	if err := h.db.
		Where("id = ? AND role = ?", companionID, models.RoleCompanion).
		First(&companion).Error; err != nil {
		httperr.BadRequest(c, "invalid_companion", "L'utilisateur indiqué n'a pas le rôle 'accompagnateur'.")
		return
	}

	assoc := models.Supervision{
		ApprenticeID: apprenticeID,
		CompanionID:  companionID,
		Relationship: req.Relationship,
	}

	if err := h.db.Create(&assoc).Error; err != nil {
		httperr.Internal(c, "supervision_create_failed", "Erreur lors de la création de l'association.")
		return
	}

	httpresp.Created(c, assoc)
}

// ListForApprentice returns the companions of one apprentice; only the
// apprentice themselves may ask.
func (h *SupervisionHandler) ListForApprentice(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	apprenticeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	if userID != uint(apprenticeID) {
		httperr.Forbidden(c, "forbidden", "Vous ne pouvez voir que vos propres accompagnateurs.")
		return
	}

	var assocs []models.Supervision
	if err := h.db.
		Preload("Companion").
		Where("apprentice_id = ?", apprenticeID).
		Find(&assocs).Error; err != nil {
		httperr.Internal(c, "supervision_list_failed", "Erreur lors de la récupération.")
		return
	}

	if len(assocs) == 0 {
		httperr.NotFound(c, "no_supervision", "Aucun accompagnateur trouvé pour cet apprenti.")
		return
	}

	httpresp.List(c, assocs)
}
