package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/turbolytics/nasr-loader/internal/csvfile"
)

// ErrInvalidConfig is matched by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Error is a malformed, missing or unreadable configuration.
type Error struct {
	// Path is the config file, when known.
	Path string
	// Fields lists the offending fields as yaml paths, e.g. nasr_db.password.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidConfig.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *Error) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Err}
}

const (
	longitudeColumn = "long_decimal"
	latitudeColumn  = "lat_decimal"
)

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		_, err := csvfile.LookupEncoding(fl.Field().String())
		return err == nil
	})

	v.RegisterValidation("csvrune", func(fl validator.FieldLevel) bool {
		r, err := csvfile.FirstRune(fl.Field().String())
		return err == nil && csvfile.ValidRune(r)
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(DataFileSettings)
		if !s.IsSpatial {
			return
		}
		for _, want := range []string{longitudeColumn, latitudeColumn} {
			if !containsFold(s.Columns, want) {
				sl.ReportError(s.Columns, "columns", "Columns", "spatial_"+want, "")
			}
		}
	}, DataFileSettings{})

	return v
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// Validate checks every field and reports all failures at once.
func (c *Configuration) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Err: err}
	}

	fields := make([]string, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Configuration.")
		fields = append(fields, field)
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, describe(fe)))
	}

	return &Error{
		Fields: fields,
		Err:    errors.New(strings.Join(msgs, "; ")),
	}
}

func describe(fe validator.FieldError) string {
	switch tag := fe.Tag(); {
	case tag == "required":
		return "is required"
	case tag == "len":
		return fmt.Sprintf("must be exactly %s character", fe.Param())
	case tag == "min":
		return fmt.Sprintf("must have at least %s item", fe.Param())
	case tag == "nefield":
		return fmt.Sprintf("must differ from %s", fe.Param())
	case tag == "csvrune":
		return fmt.Sprintf("%q cannot separate or quote csv fields", fe.Value())
	case tag == "encoding":
		return fmt.Sprintf("unknown encoding %q", fe.Value())
	case strings.HasPrefix(tag, "spatial_"):
		return fmt.Sprintf("spatial table must include %s", strings.TrimPrefix(tag, "spatial_"))
	default:
		return fmt.Sprintf("failed %q validation", tag)
	}
}
