package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
)

// pagination lee limit/offset con los topes de dto.PageRequest.
func pagination(c *fiber.Ctx) (limit, offset int) {
	p := dto.PageRequest{
		Limit:  c.QueryInt("limit", dto.DefaultLimit),
		Offset: c.QueryInt("offset", 0),
	}
	p.DefaultPage()
	return p.Limit, p.Offset
}
