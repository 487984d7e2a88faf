package usecases

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/samirrijal/civicfix/internal/core/matching"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and folds failures into ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return validationErr("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return validationErr("%s", strings.Join(msgs, "; "))
}

// ValidateQuery checks a location query before it reaches the matcher.
// Coordinates must come in pairs and lie within WGS 84 ranges, and at least
// one field must be present.
func ValidateQuery(q matching.LocationQuery) error {
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return validationErr("latitude and longitude must be provided together")
	}
	if q.Latitude != nil {
		if *q.Latitude < -90 || *q.Latitude > 90 {
			return validationErr("latitude must be between -90 and 90")
		}
		if *q.Longitude < -180 || *q.Longitude > 180 {
			return validationErr("longitude must be between -180 and 180")
		}
	}
	for _, s := range []*string{q.City, q.State, q.District, q.Pincode, q.Ward, q.Area} {
		if s != nil && len(*s) > 200 {
			return validationErr("location fields must be at most 200 characters")
		}
	}
	if q.Latitude == nil && empty(q.City) && empty(q.State) && empty(q.District) &&
		empty(q.Pincode) && empty(q.Ward) && empty(q.Area) {
		return validationErr("at least one location field is required")
	}
	return nil
}

func empty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
