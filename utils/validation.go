/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(configKey)
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	registerRule("keylist", "{0} must be a comma separated list of column names", validateKeyList)
}

// registerRule adds a custom tag together with its english message
func registerRule(tag, message string, rule validator.Func) {
	if err := validate.RegisterValidation(tag, rule); err != nil {
		panic(err)
	}
	err := validate.RegisterTranslation(tag, translator, func(t ut.Translator) error {
		return t.Add(tag, message, true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	})
	if err != nil {
		panic(err)
	}
}

// configKey reports fields by the key they are read from in the config file
func configKey(field reflect.StructField) string {
	for _, tag := range []string{"json", "yaml"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			return field.Name
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// Validate checks structure against its validate tags and joins every violation into one error
func Validate[T any](structure T) error {
	err := validate.Struct(structure)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.Translate(translator))
	}
	return errors.New(strings.Join(messages, "; "))
}

// validateKeyList accepts an empty value or a comma separated list without blank entries
func validateKeyList(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, key := range strings.Split(value, ",") {
		if strings.TrimSpace(key) == "" {
			return false
		}
	}
	return true
}
