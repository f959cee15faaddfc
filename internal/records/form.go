package records

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// MaxFieldLength bounds every text field, counted in characters. It must
// match the max= tags on RecordForm.
const MaxFieldLength = 200

const msgRequired = "This field is required."

var msgTooLong = fmt.Sprintf("Field should not have more than %d characters.", MaxFieldLength)

// RecordForm is the create/edit form body.
type RecordForm struct {
	FirstName string `form:"first_name" validate:"notblank,max=200"`
	LastName  string `form:"last_name" validate:"notblank,max=200"`
	Role      string `form:"role" validate:"notblank,max=200"`
	Salary    string `form:"salary" validate:"notblank,max=200"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormFromRecord prefills the edit form.
func FormFromRecord(r Record) RecordForm {
	return RecordForm{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
		Salary:    r.Salary,
	}
}

// Fields returns the submitted values as entered.
func (f RecordForm) Fields() Fields {
	return Fields{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Role:      f.Role,
		Salary:    f.Salary,
	}
}

// Validate returns a message per invalid field keyed by form name, or nil.
func (f RecordForm) Validate() map[string]string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		switch fe.Tag() {
		case "max":
			out[fe.Field()] = msgTooLong
		default:
			out[fe.Field()] = msgRequired
		}
	}
	return out
}

// ValidateFields applies the form rules to f.
func ValidateFields(f Fields) map[string]string {
	return RecordForm{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Role:      f.Role,
		Salary:    f.Salary,
	}.Validate()
}
