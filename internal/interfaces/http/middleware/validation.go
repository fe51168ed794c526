package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/erp/returns/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Enum tags for request binding. Each accepts the string form of the matching
// domain enum.
const (
	TagReturnSource     = "return_source"
	TagReturnCategory   = "return_category"
	TagReturnStatus     = "return_status"
	TagProductCondition = "product_condition"
	TagResolutionType   = "resolution_type"
)

var enumValidators = map[string]func(string) bool{
	TagReturnSource:     func(s string) bool { return returns.SourceType(s).IsValid() },
	TagReturnCategory:   func(s string) bool { return returns.ReturnCategory(s).IsValid() },
	TagReturnStatus:     func(s string) bool { return returns.ReturnStatus(s).IsValid() },
	TagProductCondition: func(s string) bool { return returns.ProductCondition(s).IsValid() },
	TagResolutionType:   func(s string) bool { return returns.ResolutionType(s).IsApprovalResolution() },
}

// SetupValidator configures gin's validator: JSON (or form) names in errors
// and the lifecycle enum tags
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
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
	for tag, valid := range enumValidators {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// FormatValidationErrors formats binding errors into a standard response.
// Errors that are not validator errors (malformed JSON, wrong types) produce a
// single detail with the decoder message.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Tag:     e.Tag(),
			})
		}
		return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
	}

	return dto.NewErrorResponseWithRequestID(dto.ErrCodeValidation, "Malformed request: "+err.Error(), requestID)
}

// HandleValidationError returns a 400 validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
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
	case TagReturnSource:
		return "Unknown source type"
	case TagReturnCategory:
		return "Unknown return category"
	case TagReturnStatus:
		return "Unknown return status"
	case TagProductCondition:
		return "Unknown product condition"
	case TagResolutionType:
		return "Unknown resolution type"
	default:
		return "Invalid value"
	}
}
