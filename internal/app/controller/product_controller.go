package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name           string  `json:"name" binding:"required"`
	Slug           string  `json:"slug"`
	Description    string  `json:"description"`
	PriceCents     int64   `json:"price_cents" binding:"required,gt=0"`
	WeightKg       float64 `json:"weight_kg" binding:"gte=0"`
	LengthCm       float64 `json:"length_cm"`
	HeightCm       float64 `json:"height_cm"`
	WidthCm        float64 `json:"width_cm"`
	Wood           string  `json:"wood" binding:"required"`
	LeadTimeDays   int     `json:"lead_time_days"`
	Personalizable bool    `json:"personalizable"`
	ImageURL       string  `json:"image_url"`
	IsActive       *bool   `json:"is_active"`
}

// ListProducts returns the storefront catalog
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		OnlyActive: true,
		Search:     c.Query("search"),
		SortBy:     repository.ProductSort(c.Query("sort")),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	filter.SortAscending = c.Query("order") == "asc"

	if wood := c.Query("wood"); wood != "" {
		woodType := model.WoodType(wood)
		filter.Wood = &woodType
	}
	if p := c.Query("personalizable"); p != "" {
		personalizable := p == "true"
		filter.Personalizable = &personalizable
	}

	products, err := ctrl.productService.List(filter)
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by slug
// GET /api/v1/products/:slug
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	slug := c.Param("slug")

	product, err := ctrl.productService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produto não encontrado")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a catalog entry
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do produto inválidos")
		return
	}

	product := reqToProduct(req)

	created, err := ctrl.productService.Create(product)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "Já existe um produto com este slug")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": created})
}

// UpdateProduct edits a catalog entry
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de produto inválido")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do produto inválidos")
		return
	}

	product := reqToProduct(req)
	product.ID = uint(id)

	updated, err := ctrl.productService.Update(product)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produto não encontrado")
		case errors.Is(err, service.ErrSlugTaken):
			apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "Já existe um produto com este slug")
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": updated})
}

// DeleteProduct removes a catalog entry
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de produto inválido")
		return
	}

	if err := ctrl.productService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produto não encontrado")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produto removido"})
}

func reqToProduct(req ProductRequest) *model.Product {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	leadTime := req.LeadTimeDays
	if leadTime == 0 {
		leadTime = 15
	}
	return &model.Product{
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		WeightKg:       req.WeightKg,
		LengthCm:       req.LengthCm,
		HeightCm:       req.HeightCm,
		WidthCm:        req.WidthCm,
		Wood:           model.WoodType(req.Wood),
		LeadTimeDays:   leadTime,
		Personalizable: req.Personalizable,
		ImageURL:       req.ImageURL,
		IsActive:       isActive,
	}
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return value
}
