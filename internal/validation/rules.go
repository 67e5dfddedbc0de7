// Package validation binds and validates request input before it reaches a
// handler. Rules run on gin's validator engine so struct tags on DTOs are the
// single source of truth.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskquest-api/internal/models"
)

var registerOnce sync.Once

// Register installs the custom rules and the field naming function on gin's
// validator. It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("validation: unexpected validator engine")
		}
		if err := registerRules(v); err != nil {
			panic(fmt.Sprintf("validation: failed to register rules: %v", err))
		}
	})
}

func registerRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	rules := map[string]validator.Func{
		"task_status": func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).Valid()
		},
		"user_role": func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		},
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// fieldName reports fields by the name clients send them under.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "uri", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("Must be at least %s items/characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("Must be at most %s items/characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "Must be a valid URL"
	case "uuid", "uuid4":
		return "Must be a valid UUID"
	case "task_status":
		return fmt.Sprintf("Must be one of: %s", joinStatuses())
	case "user_role":
		return "Must be one of: ADMIN, LEADER, MEMBER"
	case "notblank":
		return "Must not be blank"
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
	}
}

func joinStatuses() string {
	names := make([]string, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}
