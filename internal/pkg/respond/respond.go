package respond

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/validation"
)

// Handle processa o resultado do serviço e envia a resposta padronizada ao cliente.
// Com err nil, escreve data com successStatus (sem corpo para 204 ou data nil).
func Handle(c *gin.Context, log logger.Logger, data interface{}, err error, successStatus int) {
	if err != nil {
		Error(c, log, err)
		return
	}

	if successStatus == http.StatusNoContent || data == nil {
		c.Status(successStatus)
		return
	}
	c.JSON(successStatus, data)
}

// Error traduz err para o envelope de erro da API e interrompe a cadeia de handlers.
func Error(c *gin.Context, log logger.Logger, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= http.StatusInternalServerError {
		// O log recebe a causa raiz; o cliente, apenas a mensagem genérica.
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
	}

	c.AbortWithStatusJSON(status, domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
		Errors:   apperror.FieldsOf(err),
	})
}

// BindJSON decodifica e valida o corpo. Em caso de falha já respondeu com 422 e devolve false.
func BindJSON(c *gin.Context, log logger.Logger, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		Error(c, log, validation.Translate(err))
		return false
	}
	return true
}

// BindQuery decodifica e valida a query string. Em caso de falha já respondeu com 422 e devolve false.
// Se obj tiver Validate, os erros de paginação e ordenação entram na mesma resposta.
func BindQuery(c *gin.Context, log logger.Logger, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		Error(c, log, queryError(c, obj, err))
		return false
	}
	return true
}

func queryError(c *gin.Context, obj interface{}, err error) error {
	bindErr := validation.Translate(err)

	// Número malformado interrompe o binding sem dizer o campo.
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if fields := validation.QueryTypeErrors(c.Request.URL.Query(), obj); len(fields) > 0 {
			bindErr = apperror.NewFieldValidationError(fields...)
		}
	}

	if v, ok := obj.(interface{ Validate() error }); ok {
		return apperror.MergeValidation(bindErr, v.Validate())
	}
	return bindErr
}

// ParamID lê um parâmetro de rota numérico (ex.: :id).
func ParamID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NewFieldValidationError(apperror.FieldError{Field: name, Message: "deve ser um ID numérico positivo"})
	}
	return id, nil
}
