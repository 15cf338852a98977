package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs a machine code with a user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and upstream errors into safe, user-facing
// responses. Sensitive details never leave the server; the operator log
// keeps the raw error.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Ocorreu um erro no servidor",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// GORM sentinel errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations

	// unique_violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "O registro está vinculado a outros dados e não pode ser alterado",
		}
	}

	// not_null_violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "Campos obrigatórios não foram preenchidos",
		}
	}

	// Network / upstream connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Falha ao contatar um serviço externo. Tente novamente em instantes",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Este e-mail já está em uso",
		}
	}

	if strings.Contains(errLower, "slug") || strings.Contains(errLower, "idx_products_slug") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Já existe um produto com este identificador",
		}
	}

	if strings.Contains(errLower, "order_number") || strings.Contains(errLower, "idx_orders_order_number") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Número de pedido já utilizado",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Este registro já existe",
	}
}

func getNotFoundMessage(context string) string {
	switch context {
	case "product":
		return "Produto não encontrado"
	case "order":
		return "Pedido não encontrado"
	case "address":
		return "Endereço não encontrado"
	case "shipping_config":
		return "Regra de frete não encontrada"
	case "user":
		return "Usuário não encontrado"
	default:
		return "Registro não encontrado"
	}
}

func getDefaultErrorMessage(context string) string {
	switch context {
	case "checkout":
		return "Não foi possível concluir o pedido. Tente novamente"
	case "shipping":
		return "Não foi possível calcular o frete"
	default:
		return "Ocorreu um erro no servidor. Tente novamente em instantes"
	}
}

// ParseAndRespond parses the error and writes the standard payload, so
// controllers don't repeat the mapping for every fall-through case.
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
