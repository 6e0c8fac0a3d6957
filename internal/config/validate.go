package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	vOnce      sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func initValidator() {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		translator, _ = uni.GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())

		// report yaml names, as written in job files
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"yaml", "json", "envconfig"} {
				tag := fld.Tag.Get(key)
				if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	})
}

// Validate checks v's validate struct tags. The error names the first
// offending field in plain English.
func Validate(v any) error {
	initValidator()
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(verrs[0].Translate(translator))
	}
	return err
}
