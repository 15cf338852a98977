package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
	"github.com/lumeatelie/lume-backend/pkg/util"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{addressService: addressService}
}

type AddressRequest struct {
	Label      string `json:"label" binding:"required"`
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone"`
	CEP        string `json:"cep" binding:"required"`
	Street     string `json:"street" binding:"required"`
	Number     string `json:"number" binding:"required"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required,len=2"`
	IsDefault  bool   `json:"is_default"`
}

// ListAddresses returns the authenticated user's address book
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	addresses, err := ctrl.addressService.ListByUser(userID)
	if err != nil {
		log.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses, "total": len(addresses)})
}

// CreateAddress adds an address to the user's book
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do endereço inválidos")
		return
	}

	created, err := ctrl.addressService.Create(userID, reqToAddress(&req))
	if err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateAddress rewrites one of the user's addresses
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dados do endereço inválidos")
		return
	}

	address := reqToAddress(&req)
	address.ID = uint(id)

	updated, err := ctrl.addressService.Update(userID, address)
	if err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteAddress removes one of the user's addresses
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	if err := ctrl.addressService.Delete(userID, uint(id)); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Endereço removido"})
}

// SetDefaultAddress marks one address as the checkout default
// PUT /api/v1/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID inválido")
		return
	}

	if err := ctrl.addressService.SetDefault(userID, uint(id)); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Endereço padrão atualizado"})
}

// LookupCEP autofills street/district/city/state from a CEP
// GET /api/v1/cep/:cep
func (ctrl *AddressController) LookupCEP(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	address, err := ctrl.addressService.LookupCEP(c.Request.Context(), c.Param("cep"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCEP):
			apperrors.BadRequest(c, apperrors.ValidationInvalidCEP, "CEP inválido")
		case errors.Is(err, service.ErrCEPNotFound):
			apperrors.NotFound(c, apperrors.CEPNotFound, "CEP não encontrado")
		default:
			log.Error("CEP lookup failed", err, map[string]interface{}{
				"cep": c.Param("cep"),
			})
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI,
				"Serviço de CEP indisponível")
		}
		return
	}

	c.JSON(http.StatusOK, address)
}

func (ctrl *AddressController) respondAddressError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, util.ErrInvalidCEP):
		apperrors.BadRequest(c, apperrors.ValidationInvalidCEP, "CEP inválido")
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Endereço não encontrado")
	case errors.Is(err, service.ErrAddressForbidden):
		apperrors.Forbidden(c, "Este endereço pertence a outro usuário")
	default:
		log.Error("Address operation failed", err)
		apperrors.InternalError(c, "")
	}
}

func reqToAddress(req *AddressRequest) *model.Address {
	return &model.Address{
		Label:      req.Label,
		Recipient:  req.Recipient,
		Phone:      req.Phone,
		CEP:        req.CEP,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		IsDefault:  req.IsDefault,
	}
}
