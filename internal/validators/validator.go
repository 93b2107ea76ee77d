package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/MKhiriev/go-blog/models"
	"github.com/go-playground/validator/v10"
)

// Field names as they appear in forms and in ValidationError keys.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldPassword2   = "password2"
	FieldOldPassword = "old_password"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldStatus      = "status"
	FieldCategories  = "categories"
	FieldAvatar      = "avatar"
)

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// InputValidator implements Validator for the form inputs of the blog:
// sign up, profile, password change and reset, and posts.
//
// Struct tags are checked by go-playground/validator; the confirmation rule
// for password2 is applied on top of them.
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator constructs an InputValidator that reports fields by
// their json names.
func NewInputValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &InputValidator{validate: v}
}

// Validate checks obj, which must be one of the input models (value or
// pointer). When fields are given, only those Go struct fields are checked.
func (v *InputValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SignUpInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case *models.SignUpInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case models.ChangePasswordInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case *models.ChangePasswordInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case models.ResetPasswordInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case *models.ResetPasswordInput:
		return v.validateWithConfirmation(ctx, value, fields, value.Password, value.Password2)
	case models.ProfileInput, *models.ProfileInput, models.PostInput, *models.PostInput:
		return v.validateStruct(ctx, value, fields).OrNil()
	default:
		return ErrUnsupportedType
	}
}

// validateWithConfirmation adds the "passwords do not match" message only
// when the password itself is valid. The tag rules count characters, so the
// bcrypt byte limit is enforced here as well.
func (v *InputValidator) validateWithConfirmation(ctx context.Context, obj any, fields []string, password, confirmation string) error {
	verr := v.validateStruct(ctx, obj, fields)
	if !verr.Has(FieldPassword) && len(password) > MaxPasswordBytes {
		verr.Add(FieldPassword, MsgPasswordTooLong)
	}
	if !verr.Has(FieldPassword) && password != confirmation {
		verr.Add(FieldPassword2, MsgPasswordsDoNotMatch)
	}
	return verr.OrNil()
}

func (v *InputValidator) validateStruct(ctx context.Context, obj any, fields []string) ValidationError {
	var err error
	if len(fields) > 0 {
		err = v.validate.StructPartialCtx(ctx, obj, fields...)
	} else {
		err = v.validate.StructCtx(ctx, obj)
	}

	verr := ValidationError{}
	if err == nil {
		return verr
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		verr.Add("_", err.Error())
		return verr
	}

	for _, fe := range fieldErrors {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

// message renders a go-playground field error the way the forms show it.
func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		if field == FieldPassword2 {
			return "please confirm your password"
		}
		return fmt.Sprintf("%s cannot be empty", field)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "email":
		return MsgInvalidEmail
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
