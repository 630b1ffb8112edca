package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)

// сообщения формы оформления: "поле.тег" или "поле"
var fieldMessages = map[string]string{
	"name.required":       "Введите имя",
	"phone.required":      "Введите телефон",
	"phone.phone":         "Неверный формат телефона",
	"address.required_if": "Введите адрес доставки",
	"deliveryType":        "Выберите способ получения",
	"paymentMethod":       "Выберите способ оплаты",
	"loyaltyPoints":       "Неверное количество баллов",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// validationError переводит ошибки validator в ValidationError
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, done := fields[name]; done {
			continue
		}
		msg, ok := fieldMessages[name+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[name]
		}
		if !ok {
			msg = "Неверное значение"
		}
		fields[name] = msg
	}
	return &ValidationError{Fields: fields}
}
