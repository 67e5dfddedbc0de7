package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/taskquest-api/internal/errors"
)

const (
	bodyKey  = "validation.body"
	uriKey   = "validation.uri"
	queryKey = "validation.query"
)

// Body binds the JSON body into a T and validates it. On failure the request
// is answered with 400 and the handler never runs.
func Body[T any]() gin.HandlerFunc {
	Register()
	return func(c *gin.Context) {
		var input T
		if err := c.ShouldBindWith(&input, binding.JSON); err != nil {
			apierrors.Respond(c, translate(err, "Invalid request body"))
			return
		}
		c.Set(bodyKey, &input)
		c.Next()
	}
}

// URI binds path parameters into a T and validates them.
func URI[T any]() gin.HandlerFunc {
	Register()
	return func(c *gin.Context) {
		var input T
		if err := c.ShouldBindUri(&input); err != nil {
			apierrors.Respond(c, translate(err, "Invalid path parameters"))
			return
		}
		c.Set(uriKey, &input)
		c.Next()
	}
}

// Query binds the query string into a T and validates it.
func Query[T any]() gin.HandlerFunc {
	Register()
	return func(c *gin.Context) {
		var input T
		if err := c.ShouldBindQuery(&input); err != nil {
			apierrors.Respond(c, translate(err, "Invalid query parameters"))
			return
		}
		c.Set(queryKey, &input)
		c.Next()
	}
}

// BodyFrom returns the body validated by Body[T].
func BodyFrom[T any](c *gin.Context) *T {
	return from[T](c, bodyKey)
}

// URIFrom returns the path parameters validated by URI[T].
func URIFrom[T any](c *gin.Context) *T {
	return from[T](c, uriKey)
}

// QueryFrom returns the query validated by Query[T].
func QueryFrom[T any](c *gin.Context) *T {
	return from[T](c, queryKey)
}

func from[T any](c *gin.Context, key string) *T {
	value, ok := c.Get(key)
	if !ok {
		panic(fmt.Sprintf("validation: %s not bound for this route", key))
	}
	input, ok := value.(*T)
	if !ok {
		panic(fmt.Sprintf("validation: %s holds %T", key, value))
	}
	return input
}

// translate converts a binding error into a validation AppError whose details
// map field names to messages.
func translate(err error, message string) *apierrors.AppError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apierrors.Validation(message, Details(validationErrs))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apierrors.Validation(message, map[string]string{
			typeErr.Field: fmt.Sprintf("Must be of type %s", typeErr.Type.String()),
		})
	}

	if errors.Is(err, io.EOF) {
		return apierrors.Validation(message, map[string]string{"body": "Request body is empty"})
	}

	return apierrors.Validation(message, map[string]string{"request": strings.TrimSpace(err.Error())})
}

// Details flattens validator errors into a field to message map.
func Details(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fieldPath(fe)] = errorMessage(fe)
	}
	return details
}

// fieldPath drops the root struct name from the namespace so nested fields
// read as "tags[0]" rather than "CreateTaskRequest.tags[0]".
func fieldPath(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return fe.Field()
}
