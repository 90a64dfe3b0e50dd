package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/car2go/car2go-api/internal/cache"
	"github.com/car2go/car2go-api/internal/httperr"
	"github.com/car2go/car2go-api/internal/httpresp"
	"github.com/car2go/car2go-api/internal/models"
	"github.com/car2go/car2go-api/internal/storage"
)

const maxImageUploadBytes = 8 << 20

type CarHandler struct {
	db     *gorm.DB
	cache  *cache.CarCache
	images *storage.ImageStore
}

func NewCarHandler(db *gorm.DB, carCache *cache.CarCache, images *storage.ImageStore) *CarHandler {
	return &CarHandler{db: db, cache: carCache, images: images}
}

// --------- Requests ---------

type CreateCarRequest struct {
	Name                string  `json:"nom" binding:"required"`
	Model               string  `json:"modele" binding:"required"`
	Year                int     `json:"annee_fab" binding:"required"`
	Type                string  `json:"type" binding:"required"`
	Plate               string  `json:"plaque" binding:"required"`
	TechnicalInspection string  `json:"controle_technique" binding:"required"`
	PricePerHour        float64 `json:"prix_par_heure"`
	ImageURL            string  `json:"image_url"`
}

type UpdateCarRequest struct {
	Name                *string  `json:"nom"`
	Model               *string  `json:"modele"`
	Year                *int     `json:"annee_fab"`
	Type                *string  `json:"type"`
	Plate               *string  `json:"plaque"`
	TechnicalInspection *string  `json:"controle_technique"`
	PricePerHour        *float64 `json:"prix_par_heure"`
	Available           *bool    `json:"disponible"`
	ImageURL            *string  `json:"image_url"`
}

// --------- Handlers ---------

func (h *CarHandler) Create(c *gin.Context) {
	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.Type != models.CarTypeDualControl && req.Type != models.CarTypeClassic {
		httperr.BadRequest(c, "invalid_car_type", "Le type doit être 'double commande' ou 'classique'.")
		return
	}

	inspection, err := time.Parse("2006-01-02", req.TechnicalInspection)
	if err != nil {
		httperr.BadRequest(c, "invalid_inspection_date", "Date de contrôle technique invalide.")
		return
	}

	price := req.PricePerHour
	if price <= 0 {
		price = 20.0
	}

	car := models.Car{
		Name:                req.Name,
		Model:               req.Model,
		Year:                req.Year,
		Type:                req.Type,
		Plate:               req.Plate,
		TechnicalInspection: inspection,
		PricePerHour:        price,
		Available:           true,
		ImageURL:            req.ImageURL,
	}

	if err := h.db.Create(&car).Error; err != nil {
		httperr.Internal(c, "car_create_failed", "Erreur lors de la création de la voiture.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), "")

	httpresp.Created(c, car)
}

func (h *CarHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if cars, ok := h.cache.GetList(ctx); ok {
		httpresp.List(c, cars)
		return
	}

	var cars []models.Car
	if err := h.db.Order("id ASC").Find(&cars).Error; err != nil {
		httperr.Internal(c, "car_list_failed", "Erreur lors de la récupération des voitures.")
		return
	}

	h.cache.SetList(ctx, cars)

	httpresp.List(c, cars)
}

func (h *CarHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if car, ok := h.cache.Get(ctx, id); ok {
		httpresp.OK(c, car)
		return
	}

	var car models.Car
	if err := h.db.First(&car, id).Error; err != nil {
		httperr.NotFound(c, "car_not_found", "Voiture non trouvée.")
		return
	}

	h.cache.Set(ctx, id, &car)

	httpresp.OK(c, car)
}

func (h *CarHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var car models.Car
	if err := h.db.First(&car, id).Error; err != nil {
		httperr.NotFound(c, "car_not_found", "Voiture non trouvée.")
		return
	}

	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.Type != nil {
		if *req.Type != models.CarTypeDualControl && *req.Type != models.CarTypeClassic {
			httperr.BadRequest(c, "invalid_car_type", "Le type doit être 'double commande' ou 'classique'.")
			return
		}
		car.Type = *req.Type
	}
	if req.Name != nil {
		car.Name = *req.Name
	}
	if req.Model != nil {
		car.Model = *req.Model
	}
	if req.Year != nil {
		car.Year = *req.Year
	}
	if req.Plate != nil {
		car.Plate = *req.Plate
	}
	if req.TechnicalInspection != nil {
		inspection, err := time.Parse("2006-01-02", *req.TechnicalInspection)
		if err != nil {
			httperr.BadRequest(c, "invalid_inspection_date", "Date de contrôle technique invalide.")
			return
		}
		car.TechnicalInspection = inspection
	}
	if req.PricePerHour != nil {
		car.PricePerHour = *req.PricePerHour
	}
	if req.Available != nil {
		car.Available = *req.Available
	}
	if req.ImageURL != nil {
		car.ImageURL = *req.ImageURL
	}

	if err := h.db.Save(&car).Error; err != nil {
		httperr.Internal(c, "car_update_failed", "Erreur lors de la mise à jour.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), id)

	httpresp.OK(c, car)
}

func (h *CarHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	res := h.db.Delete(&models.Car{}, id)
	if res.Error != nil {
		httperr.Internal(c, "car_delete_failed", "Erreur lors de la suppression.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "car_not_found", "Voiture non trouvée.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), id)

	httpresp.OK(c, gin.H{"message": "Voiture supprimée"})
}

// UploadImage stores the car photo on S3 (resized, webp) and saves the
// resulting public URL on the car record.
func (h *CarHandler) UploadImage(c *gin.Context) {
	id := c.Param("id")

	var car models.Car
	if err := h.db.First(&car, id).Error; err != nil {
		httperr.NotFound(c, "car_not_found", "Voiture non trouvée.")
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Fichier image manquant.")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
	if err != nil {
		httperr.BadRequest(c, "unreadable_image", "Fichier image illisible.")
		return
	}

	url, err := h.images.UploadCarImage(c.Request.Context(), uuid.NewString(), raw)
	if err != nil {
		httperr.Internal(c, "image_upload_failed", "Erreur lors de l'envoi de l'image.")
		return
	}

	car.ImageURL = url
	if err := h.db.Save(&car).Error; err != nil {
		httperr.Internal(c, "car_update_failed", "Erreur lors de la mise à jour.")
		return
	}

	h.cache.Invalidate(c.Request.Context(), id)

	httpresp.OK(c, car)
}
