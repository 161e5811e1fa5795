// Package validation evaluates the field rules that every write must pass
// before it is committed.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"inkwell/app/models"
	"inkwell/app/repositories"

	"github.com/go-playground/validator/v10"
)

// Rule names the kind of failure reported for a field.
type Rule string

const (
	Required         Rule = "REQUIRED"
	Taken            Rule = "TAKEN"
	MissingReference Rule = "MISSING_REFERENCE"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  Rule   `json:"rule"`
}

func (e FieldError) String() string {
	return e.Field + " " + string(e.Rule)
}

// Errors is the ordered list of failures for one candidate entity. An empty
// list means the entity is valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.String()
	}
	return strings.Join(parts, ", ")
}

// Has reports whether field failed with rule.
func (e Errors) Has(field string, rule Rule) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Rule == rule {
			return true
		}
	}
	return false
}

// AuthorFinder is the part of the author repository the rules need.
type AuthorFinder interface {
	GetByID(id int) (*models.Author, error)
	FindByEmail(email string) (*models.Author, error)
}

// PostFinder is the part of the post repository the rules need.
type PostFinder interface {
	GetByID(id int) (*models.Post, error)
}

var (
	authorOrder  = []string{"name", "email"}
	postOrder    = []string{"author_id", "title", "body"}
	commentOrder = []string{"post_id", "author_id", "commenter_name", "body"}
)

// Validator runs presence rules declared as struct tags plus the repository
// backed uniqueness and reference rules.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the notblank tag and the comment rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterStructValidation(commenterRule, models.Comment{})

	return &Validator{validate: v}
}

// commenterRule requires a commenter name unless an author is linked.
func commenterRule(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.Comment)
	if _, ok := c.Commenter.AuthorID(); ok {
		return
	}
	name, _ := c.Commenter.Name()
	if strings.TrimSpace(name) == "" {
		sl.ReportError(name, "commenter_name", "Commenter", "required", "")
	}
}

// Author checks a candidate author. The email must not belong to any other author.
func (v *Validator) Author(a *models.Author, authors AuthorFinder) (Errors, error) {
	errs, err := v.presence(a)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(a.Email) != "" {
		owner, err := authors.FindByEmail(a.Email)
		switch {
		case err == nil && owner.ID != a.ID:
			errs = append(errs, FieldError{Field: "email", Rule: Taken})
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	return ordered(errs, authorOrder), nil
}

// Post checks a candidate post, including that its author exists.
func (v *Validator) Post(p *models.Post, authors AuthorFinder) (Errors, error) {
	errs, err := v.presence(p)
	if err != nil {
		return nil, err
	}

	_, err = authors.GetByID(p.AuthorID)
	missing, err := isMissing(err)
	if err != nil {
		return nil, fmt.Errorf("check author: %w", err)
	}
	if missing {
		errs = append(errs, FieldError{Field: "author_id", Rule: MissingReference})
	}

	return ordered(errs, postOrder), nil
}

// Comment checks a candidate comment: its post must exist, and so must the
// linked author when there is one.
func (v *Validator) Comment(c *models.Comment, posts PostFinder, authors AuthorFinder) (Errors, error) {
	errs, err := v.presence(c)
	if err != nil {
		return nil, err
	}

	_, err = posts.GetByID(c.PostID)
	missing, err := isMissing(err)
	if err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if missing {
		errs = append(errs, FieldError{Field: "post_id", Rule: MissingReference})
	}

	if authorID, ok := c.AuthorID(); ok {
		_, err := authors.GetByID(authorID)
		missing, err := isMissing(err)
		if err != nil {
			return nil, fmt.Errorf("check author: %w", err)
		}
		if missing {
			errs = append(errs, FieldError{Field: "author_id", Rule: MissingReference})
		}
	}

	return ordered(errs, commentOrder), nil
}

func (v *Validator) presence(entity interface{}) (Errors, error) {
	err := v.validate.Struct(entity)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	errs := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, FieldError{Field: fe.Field(), Rule: Required})
	}
	return errs, nil
}

func isMissing(err error) (bool, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return true, nil
	}
	return false, err
}

func ordered(errs Errors, order []string) Errors {
	rank := func(field string) int {
		for i, f := range order {
			if f == field {
				return i
			}
		}
		return len(order)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return rank(errs[i].Field) < rank(errs[j].Field)
	})
	return errs
}
