package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/logging"
)

// responseDateLayout renders timestamps as DD/MM/YYYY HH:MM:SS in responses.
const responseDateLayout = "02/01/2006 15:04:05"

// protectedFields may never be set or overwritten through an update request.
var protectedFields = []string{"id", "created_at"}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	log     *logging.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logging.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Leftover
// verbs on known paths answer 405; anything else under the group answers 400.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Post("/", h.HandleCreate)
	products.Get("/", h.HandleList)
	products.Get("/:id", h.HandleGetByID)
	products.Put("/:id", h.HandleUpdate)
	products.Delete("/:id", h.HandleDelete)

	products.All("/", h.HandleMethodNotAllowed)
	products.All("/:id", h.HandleMethodNotAllowed)
	products.Use(h.HandleInvalidRoute)
}

// productResponse is the client-facing product shape. Timestamps are stored
// and transported internally as full time.Time values and only rendered as
// locale-formatted strings here.
type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

// formatForResponse renders a product for serialization. It is a pure
// transformation applied explicitly by the handlers; nothing intercepts the
// serializer.
func formatForResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.Format(responseDateLayout),
		UpdatedAt:   p.UpdatedAt.Format(responseDateLayout),
	}
}

// HandleCreate handles POST /products.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return h.respondError(c, err)
	}

	h.log.Info("product created", logging.Fields{
		"requestId":   requestID(c),
		"productId":   product.ID,
		"productName": product.Name,
	})
	return c.Status(fiber.StatusCreated).JSON(formatForResponse(*product))
}

// HandleList handles GET /products with pagination and filters.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	in := models.FilterInput{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Search:   c.Query("search"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
	}

	page, err := h.service.ListProducts(c.UserContext(), in)
	if err != nil {
		return h.respondError(c, err)
	}

	resp := productListResponse{
		Products:   make([]productResponse, 0, len(page.Products)),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Products {
		resp.Products = append(resp.Products, formatForResponse(p))
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// HandleGetByID handles GET /products/:id.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
	id, ok := h.parseProductID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid product id",
		})
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(formatForResponse(*product))
}

// HandleUpdate handles PUT /products/:id. Empty payloads and payloads naming
// protected fields are rejected before any storage access.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, ok := h.parseProductID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid product id",
		})
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}
	if len(raw) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "no fields provided for update",
		})
	}
	for _, field := range protectedFields {
		if _, present := raw[field]; present {
			h.log.Warn("attempt to update protected field", logging.Fields{
				"requestId": requestID(c),
				"productId": id,
				"field":     field,
			})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "updating protected fields is not allowed",
			})
		}
	}

	var patch models.ProductInput
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid request body",
		})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, patch)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(formatForResponse(*product))
}

// HandleDelete handles DELETE /products/:id.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, ok := h.parseProductID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid product id",
		})
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMethodNotAllowed answers verbs that are not supported on a known path.
func (h *ProductHandler) HandleMethodNotAllowed(c *fiber.Ctx) error {
	h.log.Warn("method not allowed", logging.Fields{
		"requestId": requestID(c),
		"method":    c.Method(),
		"path":      c.Path(),
	})
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
		"message": "method not allowed",
	})
}

// HandleInvalidRoute answers requests to undefined paths under the product
// group.
func (h *ProductHandler) HandleInvalidRoute(c *fiber.Ctx) error {
	h.log.Warn("invalid route accessed", logging.Fields{
		"requestId": requestID(c),
		"method":    c.Method(),
		"path":      c.Path(),
	})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "invalid route",
	})
}

// parseProductID parses the :id path parameter. No storage call is attempted
// for a non-numeric id; any well-formed number is looked up and answered with
// not-found when no row matches.
func (h *ProductHandler) parseProductID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		h.log.Warn("invalid product id", logging.Fields{
			"requestId": requestID(c),
			"productId": c.Params("id"),
		})
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto the HTTP status contract. Storage
// errors were already logged at the point of failure and are surfaced without
// internal detail.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": ve.Message,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "product not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestId").(string); ok {
		return id
	}
	return ""
}
