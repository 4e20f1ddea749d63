// Package bind decodes a JSON request body into a struct and validates it
// with go-playground/validator struct tags.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shashiranjanraj/storefront/config"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator. Field names in errors follow the
// json tag so they match what the client sent.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body into dest and validates it.
// Returns (errs, nil) on validation failures and (nil, err) when the body is
// not valid JSON or too large.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			// An empty body decodes as "no fields"; validation reports what is missing.
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.As(err, &typeErr):
			return map[string]string{typeErr.Field: "has the wrong type"}, nil
		default:
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return Struct(dest), nil
}

// Struct validates v and returns one message per failing field, or nil.
func Struct(v interface{}) map[string]string {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe)
		if _, dup := out[key]; !dup {
			out[key] = message(fe)
		}
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if isString {
			return "must be at least " + fe.Param() + " characters"
		}
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "mongodb":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// HasErrors reports whether a validation map contains entries.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }
