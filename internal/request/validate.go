package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Defaults applied when a tool call omits the field.
const (
	DefaultBoxThreshold  = 0.3
	DefaultTextThreshold = 0.25
	DefaultInpaintMode   = "merge"
)

// Field limits.
const (
	MaxTextPromptLen    = 200
	MaxInpaintPromptLen = 300
)

// ToolRequest is a validated, canonical tool call.
type ToolRequest struct {
	Kind          Kind     `json:"-"`
	Image         string   `json:"image" validate:"required,imageref"`
	TextPrompt    string   `json:"text_prompt" validate:"max=200,labels"`
	InpaintPrompt string   `json:"inpaint_prompt" validate:"max=300,printascii"`
	BoxThreshold  *float64 `json:"box_threshold" validate:"omitempty,gte=0,lte=1"`
	TextThreshold *float64 `json:"text_threshold" validate:"omitempty,gte=0,lte=1"`
	InpaintMode   string   `json:"inpaint_mode" validate:"oneof=merge first"`
	Endpoint      string   `json:"endpointUrl" validate:"httpurl"`
}

// BoxThresholdOrDefault returns the box threshold, or DefaultBoxThreshold when absent.
func (r *ToolRequest) BoxThresholdOrDefault() float64 {
	if r.BoxThreshold == nil {
		return DefaultBoxThreshold
	}
	return *r.BoxThreshold
}

// TextThresholdOrDefault returns the text threshold, or DefaultTextThreshold when absent.
func (r *ToolRequest) TextThresholdOrDefault() float64 {
	if r.TextThreshold == nil {
		return DefaultTextThreshold
	}
	return *r.TextThreshold
}

// ValidationError describes the first constraint a tool call violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	// http(s) URL, Windows drive path, or POSIX absolute/relative path.
	imageRefPattern = regexp.MustCompile(`^(?i:https?://)|^[A-Za-z]:[\\/]|^\.{1,2}/|^/`)
	labelsPattern   = regexp.MustCompile(`^[A-Za-z0-9 .-]*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "imageref", func(fl validator.FieldLevel) bool {
		return imageRefPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "labels", func(fl validator.FieldLevel) bool {
		return labelsPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "httpurl", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(ToolRequest)
		if r.Kind == KindInpaint && strings.TrimSpace(r.InpaintPrompt) == "" {
			sl.ReportError(r.InpaintPrompt, "inpaint_prompt", "InpaintPrompt", "required", "")
		}
	}, ToolRequest{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate parses raw tool-call arguments for kind and enforces every field
// constraint. defaultEndpoint is used when the call does not name one.
// The returned error is always a *ValidationError.
func Validate(kind Kind, rawArgs json.RawMessage, defaultEndpoint string) (*ToolRequest, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "name", Message: fmt.Sprintf("unknown tool kind %q", kind)}
	}

	args := map[string]any{}
	if len(rawArgs) > 0 && string(rawArgs) != "null" {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, &ValidationError{Field: "arguments", Message: "arguments must be a JSON object"}
		}
	}

	req := &ToolRequest{
		Kind:        kind,
		Endpoint:    defaultEndpoint,
		InpaintMode: DefaultInpaintMode,
	}

	var err error
	if req.Image, _, err = stringArg(args, "image"); err != nil {
		return nil, err
	}
	if req.TextPrompt, _, err = stringArg(args, "text_prompt"); err != nil {
		return nil, err
	}
	if req.BoxThreshold, err = numberArg(args, "box_threshold"); err != nil {
		return nil, err
	}
	if req.TextThreshold, err = numberArg(args, "text_threshold"); err != nil {
		return nil, err
	}
	if endpoint, ok, err := stringArg(args, "endpointUrl"); err != nil {
		return nil, err
	} else if ok {
		req.Endpoint = endpoint
	}

	// Only the inpaint tool accepts these; other tools ignore them.
	if kind == KindInpaint {
		if req.InpaintPrompt, _, err = stringArg(args, "inpaint_prompt"); err != nil {
			return nil, err
		}
		if mode, ok, err := stringArg(args, "inpaint_mode"); err != nil {
			return nil, err
		} else if ok {
			req.InpaintMode = mode
		}
	}

	if err := validate.Struct(req); err != nil {
		return nil, toValidationError(err)
	}

	req.Endpoint = strings.TrimRight(req.Endpoint, "/")
	return req, nil
}

func stringArg(args map[string]any, key string) (string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, &ValidationError{Field: key, Message: key + " must be a string"}
	}
	return s, true, nil
}

// numberArg coerces numbers and numeric strings.
func numberArg(args map[string]any, key string) (*float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, &ValidationError{Field: key, Message: key + " must be a number"}
	}
	return &f, nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "imageref":
		return "image must be an http(s) URL or a local path"
	case "labels":
		return "text_prompt only supports English letters, digits, spaces, '.' and '-'"
	case "printascii":
		return field + " only supports printable English ASCII characters"
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters)", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "httpurl":
		return field + " must be a valid http or https URL"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
