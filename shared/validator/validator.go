package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"tablebook/config"
	"tablebook/shared/constant"
	"tablebook/shared/failure"
	"tablebook/shared/timezone"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// registerCalendarDayValidation accepts a YYYY-MM-DD string. With param
// "future" the day must not lie before today in the application timezone.
func registerCalendarDayValidation(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	day, err := timezone.Parse(constant.CalendarDayFormat, value)
	if err != nil {
		return false
	}

	if field.Param() == "future" {
		today, err := timezone.Parse(constant.CalendarDayFormat, timezone.Format(timezone.Now(), constant.CalendarDayFormat))
		if err != nil {
			return false
		}

		return !day.Before(today)
	}

	return true
}

func init() {
	cfg := config.Get()

	validate = val.New(val.WithRequiredStructEnabled())
	err := validate.RegisterValidation("tablebook", func(fl val.FieldLevel) bool {
		method := fl.Field().MethodByName("Validate")
		if method.IsValid() {
			result := method.Call([]reflect.Value{reflect.ValueOf(cfg)})

			return result[0].Interface() == nil
		}

		return false
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("calendarday", registerCalendarDayValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
