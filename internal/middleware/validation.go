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

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// ValidationError is one field that failed request binding
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var errorMessages = map[string]string{
	"required": "Field is required",
	"email":    "Invalid email format",
	"max":      "Value is too long",
	"oneof":    "Value is not one of the allowed options",
	"datetime": "Date must be YYYY-MM-DD",
	"role":     "Role must be doctor or receptionist",
	"timing":   "Timing must be one of before_meal, after_meal, empty_stomach, bedtime, as_needed",
}

var registerOnce sync.Once

// RegisterValidators installs the clinic tags on gin's validator and reports
// fields by their JSON names
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("unexpected binding validator engine")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		if err = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		}); err != nil {
			return
		}
		err = v.RegisterValidation("timing", func(fl validator.FieldLevel) bool {
			return model.Timing(fl.Field().String()).Valid()
		})
	})
	return err
}

// BindingErrors converts a bind error into per-field messages. It returns
// nil when err is not a validation failure.
func BindingErrors(err error) []ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	out := make([]ValidationError, 0, len(errs))
	for _, e := range errs {
		msg := errorMessages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: msg,
		})
	}
	return out
}

// BindJSON binds the request body into obj. On failure it answers 400 with
// the offending fields and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	if fields := BindingErrors(err); len(fields) > 0 {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "validation failed", fields)
	} else {
		httputil.RespondWithStatus(c, http.StatusBadRequest, "invalid request body", nil)
	}
	return false
}
