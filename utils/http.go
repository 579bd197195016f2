// utils/http.go - response helpers and service-error translation
package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Mrv1409/membrosfitt-sub001/services"
)

// Sucesso sends the standard success envelope.
func Sucesso(c *fiber.Ctx, data interface{}) error {
	response := fiber.Map{"success": true}
	if dataMap, ok := data.(fiber.Map); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else if data != nil {
		response["data"] = data
	}
	return c.JSON(response)
}

// Erro sends the standard error envelope with an explicit status.
func Erro(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ErroServico maps a service-layer error onto the HTTP surface:
// validation and state conflicts are client errors, missing records
// are 404, anything else is a generic 500 that never leaks internals.
func ErroServico(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return Erro(c, fiber.StatusBadRequest, ve.Error())
	}

	var sce *services.StateConflictError
	if errors.As(err, &sce) {
		return Erro(c, fiber.StatusBadRequest, sce.Error())
	}

	var nfe *services.NotFoundError
	if errors.As(err, &nfe) {
		return Erro(c, fiber.StatusNotFound, nfe.Error())
	}

	if errors.Is(err, services.ErrNaoEncontrado) {
		return Erro(c, fiber.StatusNotFound, "Registro não encontrado")
	}

	return Erro(c, fiber.StatusInternalServerError, "Erro interno do servidor")
}
