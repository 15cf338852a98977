package service

import (
	"context"
	"errors"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/pkg/cep/viacep"
	"github.com/lumeatelie/lume-backend/pkg/logger"
	"github.com/lumeatelie/lume-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound  = errors.New("address not found")
	ErrAddressForbidden = errors.New("address belongs to another user")
	ErrCEPNotFound      = errors.New("cep not found")
)

// CEPLookuper resolves a normalized 8-digit CEP to a street address.
// Satisfied by the ViaCEP client; tests substitute a fake.
type CEPLookuper interface {
	Lookup(ctx context.Context, cep string) (*viacep.Address, error)
}

type AddressService interface {
	Create(userID uint, address *model.Address) (*model.Address, error)
	ListByUser(userID uint) ([]model.Address, error)
	Update(userID uint, address *model.Address) (*model.Address, error)
	Delete(userID, addressID uint) error
	SetDefault(userID, addressID uint) error
	LookupCEP(ctx context.Context, rawCEP string) (*viacep.Address, error)
}

type addressService struct {
	addressRepo repository.AddressRepository
	cepClient   CEPLookuper
}

func NewAddressService(addressRepo repository.AddressRepository, cepClient CEPLookuper) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		cepClient:   cepClient,
	}
}

func (s *addressService) Create(userID uint, address *model.Address) (*model.Address, error) {
	normalized, err := util.NormalizeCEP(address.CEP)
	if err != nil {
		return nil, err
	}
	address.CEP = normalized
	address.UserID = userID

	if address.IsDefault {
		if err := s.addressRepo.ClearDefault(userID); err != nil {
			return nil, err
		}
	}

	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}

	logger.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})
	return address, nil
}

func (s *addressService) ListByUser(userID uint) ([]model.Address, error) {
	return s.addressRepo.FindByUserID(userID)
}

func (s *addressService) Update(userID uint, address *model.Address) (*model.Address, error) {
	existing, err := s.findOwned(userID, address.ID)
	if err != nil {
		return nil, err
	}

	normalized, err := util.NormalizeCEP(address.CEP)
	if err != nil {
		return nil, err
	}
	address.CEP = normalized
	address.UserID = existing.UserID
	address.CreatedAt = existing.CreatedAt

	if address.IsDefault && !existing.IsDefault {
		if err := s.addressRepo.ClearDefault(userID); err != nil {
			return nil, err
		}
	}

	if err := s.addressRepo.Update(address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *addressService) Delete(userID, addressID uint) error {
	if _, err := s.findOwned(userID, addressID); err != nil {
		return err
	}
	return s.addressRepo.Delete(addressID)
}

func (s *addressService) SetDefault(userID, addressID uint) error {
	address, err := s.findOwned(userID, addressID)
	if err != nil {
		return err
	}

	if err := s.addressRepo.ClearDefault(userID); err != nil {
		return err
	}

	address.IsDefault = true
	return s.addressRepo.Update(address)
}

// LookupCEP resolves a CEP for the address form autofill.
func (s *addressService) LookupCEP(ctx context.Context, rawCEP string) (*viacep.Address, error) {
	normalized, err := util.NormalizeCEP(rawCEP)
	if err != nil {
		return nil, err
	}

	result, err := s.cepClient.Lookup(ctx, normalized)
	if err != nil {
		if errors.Is(err, viacep.ErrCEPNotFound) {
			return nil, ErrCEPNotFound
		}
		logger.Error("CEP lookup failed", err, map[string]interface{}{
			"cep": normalized,
		})
		return nil, err
	}
	return result, nil
}

func (s *addressService) findOwned(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address access denied", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressForbidden
	}
	return address, nil
}
