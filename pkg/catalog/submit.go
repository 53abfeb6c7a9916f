package catalog

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Submission is a user-entered dish.
type Submission struct {
	Restaurant  string   `json:"restaurant" validate:"required"`
	Food        string   `json:"food" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Taste       *float64 `json:"taste,omitempty" validate:"omitempty,gte=1,lte=10"`
	Location    string   `json:"location" validate:"required"`
	PortionSize string   `json:"portion_size,omitempty"`
	Category    string   `json:"dish_category,omitempty"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source_url,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Submit canonicalizes and validates sub, then appends it as a new row with
// one vote. Existing rows with the same restaurant and food are left alone.
func Submit(records []Record, sub Submission) ([]Record, Record, error) {
	sub = canonicalize(sub)
	if err := validateSubmission(sub); err != nil {
		return records, Record{}, err
	}

	rec := Record{
		Restaurant:  sub.Restaurant,
		Food:        sub.Food,
		Price:       sub.Price,
		Taste:       sub.Taste,
		Location:    sub.Location,
		PortionSize: sub.PortionSize,
		Category:    sub.Category,
		Description: String(sub.Description),
		SourceURL:   sub.Source,
		VotesCount:  Int(1),
	}
	return append(records, rec), rec, nil
}

func canonicalize(sub Submission) Submission {
	sub.Restaurant = TitleCase(sub.Restaurant)
	sub.Food = TitleCase(sub.Food)
	sub.Location = TitleCase(sub.Location)
	sub.Category = TitleCase(sub.Category)
	if sub.Category == "" {
		sub.Category = DefaultCategory
	}
	sub.PortionSize = strings.TrimSpace(sub.PortionSize)
	sub.Description = strings.TrimSpace(sub.Description)
	sub.Source = strings.TrimSpace(sub.Source)
	if sub.Source == "" {
		sub.Source = UserSource
	}
	return sub
}

func validateSubmission(sub Submission) error {
	err := getValidator().Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return eris.Wrap(err, "catalog: validate submission")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// TitleCase trims s and capitalizes the first letter of each word.
func TitleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
