package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// markupPattern matches anything resembling an HTML/XML tag. Names and search
// terms containing such sequences are rejected outright.
var markupPattern = regexp.MustCompile(`<[^>]*>`)

// Product represents a catalog product row.
//
// Prices above 2^53-1 cannot be represented exactly as float64 and would be
// silently corrupted in storage and JSON, so the factory rejects them (the
// "lte" tag below carries that ceiling).
type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255,markupfree"`
	Price       float64   `json:"price" gorm:"not null" validate:"required,gt=0,lte=9007199254740991"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity" gorm:"not null" validate:"gte=0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

// ProductInput carries the writable product fields of a create or update
// request. Pointer fields distinguish absent values from zero values, which
// matters for merge-style updates.
type ProductInput struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category"`
	Quantity    *int     `json:"quantity"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag name, so the error is ignored.
	_ = v.RegisterValidation("markupfree", func(fl validator.FieldLevel) bool {
		return !markupPattern.MatchString(fl.Field().String())
	})
	return v
}

// NewProduct builds a validated Product from raw input. It is pure: the
// caller is responsible for persistence. Optional fields default to the empty
// string and all strings are trimmed. On success CreatedAt equals UpdatedAt.
func NewProduct(in ProductInput) (*Product, error) {
	if in.Price == nil {
		return nil, newValidationError("price", "price must be a number greater than zero")
	}
	if in.Quantity == nil {
		return nil, newValidationError("quantity", "quantity must be a non-negative number")
	}

	now := time.Now()
	p := &Product{
		Name:        strings.TrimSpace(stringValue(in.Name)),
		Price:       *in.Price,
		Description: strings.TrimSpace(stringValue(in.Description)),
		Image:       strings.TrimSpace(stringValue(in.Image)),
		Category:    strings.TrimSpace(stringValue(in.Category)),
		Quantity:    *in.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}

// MergeProduct overlays the fields present in patch onto an existing product
// and re-runs the factory validation. ID and CreatedAt are carried over from
// the existing row untouched; refreshing UpdatedAt is left to the repository
// at write time.
func MergeProduct(existing Product, patch ProductInput) (*Product, error) {
	merged := existing
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Description != nil {
		merged.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Image != nil {
		merged.Image = strings.TrimSpace(*patch.Image)
	}
	if patch.Category != nil {
		merged.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Quantity != nil {
		merged.Quantity = *patch.Quantity
	}

	if err := validateProduct(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// validateProduct maps validator failures onto field-specific messages,
// keeping the rejection order: name, then price, then quantity.
func validateProduct(p *Product) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return newValidationError("", "invalid product data")
	}

	fe := ve[0]
	switch fe.StructField() {
	case "Name":
		switch fe.Tag() {
		case "max":
			return newValidationError("name", "product name must be at most 255 characters")
		case "markupfree":
			return newValidationError("name", "product name must not contain markup")
		default:
			return newValidationError("name", "product name is required")
		}
	case "Price":
		if fe.Tag() == "lte" {
			return newValidationError("price", "price exceeds the maximum supported value")
		}
		return newValidationError("price", "price must be a number greater than zero")
	case "Quantity":
		return newValidationError("quantity", "quantity must be a non-negative number")
	}
	return newValidationError(strings.ToLower(fe.StructField()), "invalid value")
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
