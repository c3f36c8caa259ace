/*
validation.go - Input rules for clients, accounts and movements

PURPOSE:
  Field rules are declared as `validate` struct tags on the input types
  (types.go) and checked with go-playground/validator. Referential rules
  (an account's client, a movement's account) need a lookup and are
  checked here after the field rules pass.

RULES:
  NewClient:   name required; email required and contains "@";
               phone required, at least 9 characters
  NewAccount:  accountNumber required; balance present (any sign);
               clientId set and the client exists
  NewMovement: quantity present (any sign); date > 0 (epoch ms);
               accountId set and the account exists

  Validation is a pure function of the input and of which referenced
  entities exist at the time of the call.
*/
package bank

import (
	"context"
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// checkFields runs the struct tag rules. The result is never nil; an empty
// Fields slice means the input passed.
func checkFields(entity string, in any) *ValidationError {
	ve := &ValidationError{Entity: entity}
	err := validate.Struct(in)
	if err == nil {
		return ve
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Fields = append(ve.Fields, FieldError{Field: entity, Rule: "invalid"})
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return ve
}

func (e *ValidationError) failed(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// requireExists records an "exists" failure for field when lookup reports
// notFound. Other lookup errors are returned as is.
func (e *ValidationError) requireExists(ctx context.Context, field string, id ID, notFound error, lookup func(context.Context, ID) error) error {
	if e.failed(field) {
		return nil
	}
	err := lookup(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notFound):
		e.Fields = append(e.Fields, FieldError{Field: field, Rule: "exists"})
		return nil
	default:
		return err
	}
}

// err returns nil when no field failed.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateClient(in NewClient) error {
	return checkFields("client", in).err()
}

func validateAccount(ctx context.Context, clients ClientStorage, in NewAccount) error {
	ve := checkFields("account", in)
	err := ve.requireExists(ctx, "clientId", in.ClientID, ErrClientNotFound, func(ctx context.Context, id ID) error {
		_, err := clients.GetClient(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return ve.err()
}

func validateMovement(ctx context.Context, accounts AccountStorage, in NewMovement) error {
	ve := checkFields("movement", in)
	err := ve.requireExists(ctx, "accountId", in.AccountID, ErrAccountNotFound, func(ctx context.Context, id ID) error {
		_, err := accounts.GetAccount(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	return ve.err()
}
