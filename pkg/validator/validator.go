package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var mobilePattern = regexp.MustCompile(`^\d{9}$`)

// New returns a validator reading `validate` tags, reporting json field names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	configure(v)
	return v
}

// RegisterGinValidator installs the same tag set on gin's binding engine.
// extra registers application specific tags.
func RegisterGinValidator(extra ...func(*validator.Validate) error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
		for _, register := range extra {
			if err := register(v); err != nil {
				log.Fatalf("register validator failed: %s", err)
			}
		}
	}
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("mobile", mobileValidator)
	if err != nil {
		log.Fatal("register mobile validator failed")
	}
}

var mobileValidator validator.Func = func(fl validator.FieldLevel) bool {
	return mobilePattern.MatchString(fl.Field().String())
}

// OneOf accepts exactly the given values. Unlike the builtin oneof tag the
// values may contain spaces.
func OneOf[T ~string](values ...T) validator.Func {
	allowed := make(map[string]struct{}, len(values))
	for _, value := range values {
		allowed[string(value)] = struct{}{}
	}

	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}
