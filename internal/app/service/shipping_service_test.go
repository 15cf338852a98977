package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumeatelie/lume-backend/config"
	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/db"
	"github.com/lumeatelie/lume-backend/pkg/cep/viacep"
	"github.com/lumeatelie/lume-backend/pkg/util"
)

type fakeCEPClient struct {
	states map[string]string // cep -> UF
	err    error
}

func (f *fakeCEPClient) Lookup(_ context.Context, cep string) (*viacep.Address, error) {
	if f.err != nil {
		return nil, f.err
	}
	uf, ok := f.states[cep]
	if !ok {
		return nil, viacep.ErrCEPNotFound
	}
	return &viacep.Address{CEP: cep, UF: uf}, nil
}

func setupShippingServiceTest(t *testing.T, cepClient CEPLookuper) (ShippingService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	shippingRepo := repository.NewShippingRepository(testDB)
	fallback := config.ShippingConfig{
		OriginCEP:            "88010000",
		OriginState:          "SC",
		FallbackCostCents:    2500,
		FallbackDeliveryDays: 10,
	}
	return NewShippingService(shippingRepo, cepClient, fallback), testDB
}

func seedSettings(t *testing.T, testDB *gorm.DB, costCents int64, days int) {
	t.Helper()
	require.NoError(t, testDB.Create(&model.ShippingSettings{
		OriginCEP:           "88010000",
		OriginState:         "SC",
		OriginCity:          "Florianópolis",
		DefaultCostCents:    costCents,
		DefaultDeliveryDays: days,
	}).Error)
}

func TestShippingService_Estimate_InvalidCEP(t *testing.T) {
	shippingService, _ := setupShippingServiceTest(t, &fakeCEPClient{})

	tests := []string{"", "1234567", "123456789", "abcdefgh"}
	for _, cep := range tests {
		_, err := shippingService.Estimate(context.Background(), cep, 1.0)
		assert.ErrorIs(t, err, util.ErrInvalidCEP, "cep %q", cep)
	}
}

func TestShippingService_Estimate_SameCEPRuleBeatsAnyPriority(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"88010000": "SC"},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Retirada na região", RegionType: model.RegionCustom,
		BaseCostCents: 900, DeliveryDays: 2, IsActive: true, Priority: 100,
	}).Error)
	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Mesmo CEP", RegionType: model.RegionSameCEP,
		BaseCostCents: 500, DeliveryDays: 1, IsActive: true, Priority: 1,
	}).Error)

	quote, err := shippingService.Estimate(context.Background(), "88010-000", 0.5)
	require.NoError(t, err)

	assert.Equal(t, int64(500), quote.CostCents)
	assert.Equal(t, 1, quote.DeliveryDays)
	assert.Equal(t, "Mesmo CEP", quote.ServiceName)
	assert.Equal(t, QuoteSourceDatabase, quote.Source)
}

func TestShippingService_Estimate_HigherPriorityWins(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Outros estados", RegionType: model.RegionOtherStates,
		BaseCostCents: 3000, DeliveryDays: 10, IsActive: true, Priority: 5,
	}).Error)
	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Sudeste expresso", RegionType: model.RegionCustom, StateCode: "SP",
		BaseCostCents: 2200, DeliveryDays: 4, IsActive: true, Priority: 10,
	}).Error)

	quote, err := shippingService.Estimate(context.Background(), "01310100", 1.0)
	require.NoError(t, err)

	assert.Equal(t, int64(2200), quote.CostCents)
	assert.Equal(t, 4, quote.DeliveryDays)
}

func TestShippingService_Estimate_UnrestrictedCustomRule(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"69900100": "AC"},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Outros estados", RegionType: model.RegionOtherStates,
		BaseCostCents: 3000, DeliveryDays: 10, IsActive: true, Priority: 1,
	}).Error)
	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Promoção nacional", RegionType: model.RegionCustom,
		BaseCostCents: 1500, DeliveryDays: 3, IsActive: true, Priority: 5,
	}).Error)

	quote, err := shippingService.Estimate(context.Background(), "69900100", 1.0)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), quote.CostCents)
	assert.Equal(t, 3, quote.DeliveryDays)
	assert.Equal(t, QuoteSourceDatabase, quote.Source)
}

func TestShippingService_Estimate_MetroRuleRequiresPrefixAndState(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{
			"88110000": "SC", // metro prefix
			"89200000": "SC", // interior
		},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Grande Florianópolis", RegionType: model.RegionMetro, StateCode: "SC", CEPPrefix: "881",
		BaseCostCents: 800, DeliveryDays: 2, IsActive: true, Priority: 50,
	}).Error)
	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Interior de SC", RegionType: model.RegionStateInterior, StateCode: "SC",
		BaseCostCents: 1400, DeliveryDays: 5, IsActive: true, Priority: 30,
	}).Error)

	metro, err := shippingService.Estimate(context.Background(), "88110000", 1.0)
	require.NoError(t, err)
	assert.Equal(t, "Grande Florianópolis", metro.ServiceName)
	assert.Equal(t, int64(800), metro.CostCents)

	interior, err := shippingService.Estimate(context.Background(), "89200000", 1.0)
	require.NoError(t, err)
	assert.Equal(t, "Interior de SC", interior.ServiceName)
	assert.Equal(t, int64(1400), interior.CostCents)
}

func TestShippingService_Estimate_WeightSurchargeBoundary(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Outros estados", RegionType: model.RegionOtherStates,
		BaseCostCents: 2000, DeliveryDays: 8, WeightMultiplier: 0.2, MinWeightKg: 2.0,
		IsActive: true, Priority: 1,
	}).Error)

	// At exactly min weight no surcharge applies.
	atBoundary, err := shippingService.Estimate(context.Background(), "01310100", 2.0)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), atBoundary.CostCents)

	// Above it: 2000 + round(2000 * 0.2 * 1.5) = 2600.
	above, err := shippingService.Estimate(context.Background(), "01310100", 3.5)
	require.NoError(t, err)
	assert.Equal(t, int64(2600), above.CostCents)
}

func TestShippingService_Estimate_DefaultQuoteWithWeightSurcharge(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	})
	seedSettings(t, testDB, 2000, 5)

	// No rules at all: 2000 + round(2000 * 0.1 * 1.5) = 2300.
	quote, err := shippingService.Estimate(context.Background(), "01310100", 2.5)
	require.NoError(t, err)

	assert.Equal(t, int64(2300), quote.CostCents)
	assert.Equal(t, 5, quote.DeliveryDays)
	assert.Equal(t, QuoteSourceDefault, quote.Source)
}

func TestShippingService_Estimate_LookupFailureFallsBackToDefault(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		err: errors.New("viacep timeout"),
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Outros estados", RegionType: model.RegionOtherStates,
		BaseCostCents: 3000, DeliveryDays: 10, IsActive: true, Priority: 1,
	}).Error)

	quote, err := shippingService.Estimate(context.Background(), "01310100", 1.0)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), quote.CostCents)
	assert.Equal(t, QuoteSourceDefault, quote.Source)
}

func TestShippingService_Estimate_MissingSettingsUsesFallback(t *testing.T) {
	shippingService, _ := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	})

	quote, err := shippingService.Estimate(context.Background(), "01310100", 1.0)
	require.NoError(t, err)

	assert.Equal(t, int64(2500), quote.CostCents)
	assert.Equal(t, 10, quote.DeliveryDays)
	assert.Equal(t, QuoteSourceDefault, quote.Source)
}

func TestShippingService_Estimate_InactiveRulesIgnored(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{
		states: map[string]string{"01310100": "SP"},
	})
	seedSettings(t, testDB, 2000, 5)

	require.NoError(t, testDB.Create(&model.ShippingConfig{
		Name: "Desativada", RegionType: model.RegionOtherStates,
		BaseCostCents: 100, DeliveryDays: 1, IsActive: false, Priority: 99,
	}).Error)

	quote, err := shippingService.Estimate(context.Background(), "01310100", 1.0)
	require.NoError(t, err)
	assert.Equal(t, QuoteSourceDefault, quote.Source)
}

func TestShippingService_UpdateSettings_NormalizesCEP(t *testing.T) {
	shippingService, testDB := setupShippingServiceTest(t, &fakeCEPClient{})
	seedSettings(t, testDB, 2000, 5)

	var settings model.ShippingSettings
	require.NoError(t, testDB.First(&settings).Error)

	settings.OriginCEP = "88015-600"
	updated, err := shippingService.UpdateSettings(&settings)
	require.NoError(t, err)

	assert.Equal(t, "88015600", updated.OriginCEP)
}

func TestShippingService_DeleteConfig_NotFound(t *testing.T) {
	shippingService, _ := setupShippingServiceTest(t, &fakeCEPClient{})

	err := shippingService.DeleteConfig(999)
	assert.ErrorIs(t, err, ErrShippingConfigNotFound)
}
