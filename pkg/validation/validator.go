package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Problems collects messages per field. The empty key holds whole-object problems.
type Problems map[string][]string

func (p Problems) Add(field, msg string) {
	p[field] = append(p[field], msg)
}

func (p Problems) Empty() bool { return len(p) == 0 }

// Init configures the global validator used by Gin's binding.
// - Uses JSON (or form/uri) tag names in errors.
// - Registers alias tags used by request structs.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(tagName)
		v.RegisterAlias("pagesize", "min=1,max=50")
	}
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ToDetails converts binding errors into Problems suitable for the API error field.
func ToDetails(err error) Problems {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Problems{"payload": {"invalid json"}}
	}
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return Problems{field: {"must be a " + ute.Type.String()}}
	}

	// Path and query values that are not numbers
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return Problems{"payload": {fmt.Sprintf("%q is not a valid number", ne.Num)}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(Problems, len(verrs))
		for _, fe := range verrs {
			out.Add(fe.Field(), formatFieldError(fe))
		}
		return out
	}

	return Problems{"payload": {"invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.ActualTag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "numeric":
		return "must be numeric"
	case "len":
		if param != "" {
			return fmt.Sprintf("must be exactly %s characters long", param)
		}
		return "invalid length"
	case "min", "gte":
		if isNumberKind(kind) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max", "lte":
		if isNumberKind(kind) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed '%s=%s' validation", tag, param)
		}
		return fmt.Sprintf("failed '%s' validation", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
