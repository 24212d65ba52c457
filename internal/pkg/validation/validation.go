package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/password"
)

var (
	registerOnce sync.Once
	// plain valida formatos sem as regras customizadas registradas no gin.
	plain = validator.New()
)

// Register instala no validator do gin as regras "password" e "trimmed_email" e o uso do
// nome json/form nos erros de campo. Pode ser chamada mais de uma vez.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return password.CheckStrength(fl.Field().String()) == nil
		})
		// O e-mail é normalizado pelo serviço; espaços nas bordas não o invalidam.
		_ = v.RegisterValidation("trimmed_email", func(fl validator.FieldLevel) bool {
			return plain.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
		})
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Translate converte o erro de binding do gin em um ValidationError com a lista de campos.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return apperror.NewFieldValidationError(fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.NewFieldValidationError(apperror.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("tipo inválido; esperado %s", typeErr.Type.String()),
		})
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperror.NewValidationError("Parâmetro numérico inválido.")
	}

	return apperror.NewValidationError("Requisição inválida.")
}

// QueryTypeErrors aponta os parâmetros da query que não cabem no tipo numérico do campo
// de destino (inclusive em structs embutidas). O binding do gin para no primeiro erro e
// não informa o campo; esta varredura devolve todos pelo nome do form.
func QueryTypeErrors(values url.Values, obj interface{}) []apperror.FieldError {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var out []apperror.FieldError
	collectTypeErrors(t, values, &out)
	return out
}

func collectTypeErrors(t reflect.Type, values url.Values, out *[]apperror.FieldError) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectTypeErrors(f.Type, values, out)
			continue
		}
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		raw := values.Get(name)
		if raw == "" {
			continue
		}

		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		var err error
		switch ft.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			_, err = strconv.ParseInt(raw, 10, ft.Bits())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			_, err = strconv.ParseUint(raw, 10, ft.Bits())
		default:
			continue
		}
		if err != nil {
			*out = append(*out, apperror.FieldError{Field: name, Message: "deve ser um número inteiro"})
		}
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email", "trimmed_email":
		return "e-mail inválido"
	case "password":
		return password.ErrWeakPassword.Error()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no mínimo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("deve ter no máximo %s itens", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("deve ser um de [%s]", fe.Param())
	case "nefield":
		return "deve ser diferente da senha atual"
	default:
		return fmt.Sprintf("falhou na regra '%s'", fe.Tag())
	}
}
