package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/schoolfee/backend/internal/domain/fee"
	"github.com/schoolfee/backend/internal/domain/shared"
	"github.com/schoolfee/backend/internal/infrastructure/logger"
	"github.com/schoolfee/backend/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: field names in errors follow
// the json tag, decimal amounts are validated as their string form, and the
// fee enums get their own tags. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("money", validateMoney(false))
		_ = v.RegisterValidation("money_positive", validateMoney(true))
		_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			return fee.PaymentMethod(strings.ToUpper(fl.Field().String())).IsValid()
		})
		_ = v.RegisterValidation("fee_frequency", func(fl validator.FieldLevel) bool {
			return fee.Frequency(strings.ToUpper(fl.Field().String())).IsValid()
		})
		_ = v.RegisterValidation("invoice_status", func(fl validator.FieldLevel) bool {
			return fee.InvoiceStatus(strings.ToUpper(fl.Field().String())).IsValid()
		})
	})
}

// validateMoney accepts non-negative decimals with at most two fractional
// digits, and rejects zero when positive is set
func validateMoney(positive bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil || d.IsNegative() || !shared.HasMoneyScale(d) {
			return false
		}
		return !positive || d.IsPositive()
	}
}

// FormatValidationErrors formats binding errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(logger.GinRequestIDKey)))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "money":
		return "Must be a non-negative amount with at most 2 decimal places"
	case "money_positive":
		return "Must be a positive amount with at most 2 decimal places"
	case "payment_method":
		return "Must be one of: CASH BANK_TRANSFER CHEQUE CARD ONLINE OTHER"
	case "fee_frequency":
		return "Must be one of: ONE_TIME MONTHLY QUARTERLY HALF_YEARLY YEARLY"
	case "invoice_status":
		return "Must be one of: UNPAID PARTIAL PAID OVERDUE"
	case "datetime":
		return "Must be a date in " + e.Param() + " format"
	default:
		return "Invalid value"
	}
}
