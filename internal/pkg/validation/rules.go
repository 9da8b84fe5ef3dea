package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/pkg/helpers"
)

// Validation rule patterns
var (
	CourseCodePattern = `^[A-Z0-9]{6,16}$`

	PasswordMinLength = 8
	NameMinLength     = 2
	NameMaxLength     = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	CourseCode *regexp.Regexp
}{
	CourseCode: regexp.MustCompile(CourseCodePattern),
}

// rules maps custom tag names to their validators
var rules = map[string]validator.Func{
	"usertype": func(fl validator.FieldLevel) bool {
		return models.UserType(fl.Field().String()).Valid()
	},
	"coursecode": func(fl validator.FieldLevel) bool {
		return CompiledPatterns.CourseCode.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	},
	"dateortime": func(fl validator.FieldLevel) bool {
		_, err := helpers.ParseDateOrTime(fl.Field().String())
		return err == nil
	},
}

// Register adds the custom rules to v
func Register(v *validator.Validate) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %q: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin adds the custom rules to gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
