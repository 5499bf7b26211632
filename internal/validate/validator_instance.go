package validate

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cuulee/zb-bpmn-model/internal/model"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate

	prohibitedExpressionPattern = regexp.MustCompile(`(\.\*)|(\[.*,.*\])`)
)

// instance returns the process-wide validator.Validate singleton, with the
// "no_prohibited_expr" custom tag registered for the mapping source/target
// path check (spec-mandated regex `(\.\*)|(\[.*,.*\])`).
func instance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("no_prohibited_expr", func(fl validator.FieldLevel) bool {
			return !prohibitedExpressionPattern.MatchString(fl.Field().String())
		})
		validatorInst = v
	})
	return validatorInst
}

type pathHolder struct {
	Path string `validate:"no_prohibited_expr"`
}

// isProhibitedExpression reports whether a mapping source or target path
// matches the prohibited-expression regex, via the registered
// "no_prohibited_expr" tag.
func isProhibitedExpression(path string) bool {
	return instance().Struct(pathHolder{Path: path}) != nil
}

type idHolder struct {
	ID string `validate:"required,max=255"`
}

// idViolation runs the shared struct-tag validator against an identifier
// and reports which of the two id rules (required, max length) failed, if
// any, mirroring the tag-to-field_error dispatch pattern used elsewhere in
// the corpus for go-playground/validator results. The "max" tag counts
// characters, so the byte length is also checked against model.IDMaxLen.
func idViolation(id string) (missing, tooLong bool) {
	tooLong = len(id) > model.IDMaxLen
	err := instance().Struct(idHolder{ID: id})
	if err == nil {
		return false, tooLong
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return false, tooLong
	}
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			missing = true
		case "max":
			tooLong = true
		}
	}
	return missing, tooLong
}
