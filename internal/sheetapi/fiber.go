package sheetapi

import (
	"github.com/gofiber/fiber/v2"
)

// CORSHeaders are sent with every endpoint response.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

// Handler adapts a Gateway to fiber.
type Handler struct {
	gateway *Gateway
}

// NewHandler constructs handler.
func NewHandler(gateway *Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// Register mounts the endpoint at path on router.
func (h *Handler) Register(router fiber.Router, path string) {
	router.Get(path, h.Get)
	router.Post(path, h.Post)
	router.Options(path, h.Options)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	status, env := h.gateway.Get(c.UserContext(), c.Query("tab"), c.Query("meta"))
	return reply(c, status, env)
}

func (h *Handler) Post(c *fiber.Ctx) error {
	status, env := h.gateway.Post(c.UserContext(), c.Body())
	return reply(c, status, env)
}

func (h *Handler) Options(c *fiber.Ctx) error {
	setCORS(c)
	c.Status(fiber.StatusNoContent)
	return nil
}

func reply(c *fiber.Ctx, status int, env any) error {
	setCORS(c)
	return c.Status(status).JSON(env)
}

func setCORS(c *fiber.Ctx) {
	for k, v := range CORSHeaders {
		c.Set(k, v)
	}
}
