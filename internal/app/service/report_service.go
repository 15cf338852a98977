package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

// ReportService builds back-office exports.
type ReportService interface {
	ExportPaidOrders(from, to time.Time) (*bytes.Buffer, string, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
}

func NewReportService(orderRepo repository.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

// ExportPaidOrders writes every paid order in the window to an XLSX sheet,
// one row per order item so production can work straight off the export.
func (s *reportService) ExportPaidOrders(from, to time.Time) (*bytes.Buffer, string, error) {
	orders, err := s.orderRepo.FindPaidBetween(from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	headers := []string{
		"Pedido", "Data do pagamento", "Cliente", "E-mail", "Telefone",
		"Produto", "Qtd.", "Preço unitário (R$)", "Personalização",
		"Entrega", "Frete (R$)", "Total do pedido (R$)", "CEP", "Endereço",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	for _, order := range orders {
		paidAt := ""
		if order.PaymentApprovedAt != nil {
			paidAt = order.PaymentApprovedAt.Format("02/01/2006 15:04")
		}
		for _, item := range order.OrderItems {
			values := []interface{}{
				order.OrderNumber,
				paidAt,
				order.CustomerName,
				order.CustomerEmail,
				order.CustomerPhone,
				item.ProductName,
				item.Quantity,
				float64(item.UnitPriceCents) / 100,
				item.PersonalizationNote,
				string(order.DeliveryType),
				float64(order.ShippingCents) / 100,
				float64(order.TotalCents) / 100,
				order.ShippingCEP,
				order.ShippingAddress,
			}
			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				f.SetCellValue(sheet, cell, value)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to build orders export", err, nil)
		return nil, "", err
	}

	filename := fmt.Sprintf("pedidos_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))

	logger.Info("Orders export built", map[string]interface{}{
		"orders":   len(orders),
		"rows":     row - 2,
		"filename": filename,
	})
	return buf, filename, nil
}
