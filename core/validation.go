// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors match what callers sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateBookDraft validates a BookDraft.
//
// Validation rules:
//   - title, author, description and isbn must not be empty
//   - price must be present and not negative
//   - pages, when present, must not be negative
func ValidateBookDraft(draft *BookDraft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidBook)
	}
	if err := validateStruct(draft); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBook, err)
	}
	return nil
}

// ValidateReviewDraft validates a ReviewDraft.
//
// Validation rules:
//   - bookId, author, title and comment must not be empty
//   - rating must be present and between 1 and 5
//
// NOT validated: that bookId refers to an existing Book.
func ValidateReviewDraft(draft *ReviewDraft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft is nil", ErrInvalidReview)
	}
	if err := validateStruct(draft); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; !exists {
			fields[fe.Field()] = describe(fe)
		}
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}
