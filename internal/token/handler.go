package token

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/boyw5785/gift-coin/internal/ledger"
)

// ManagerIDHeader carries the caller identity for manager-gated operations.
const ManagerIDHeader = "X-Manager-ID"

// AdminSecretLocal is the fiber locals key under which the admin middleware
// stores the verified capability secret.
const AdminSecretLocal = "admin_secret"

// Handler exposes the treasury over HTTP.
type Handler struct {
	service     *Service
	valueSecret []byte
}

// NewHandler builds a treasury HTTP handler. valueSecret signs issued bearer
// values.
func NewHandler(service *Service, valueSecret []byte) *Handler {
	return &Handler{service: service, valueSecret: valueSecret}
}

type mintRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type burnRequest struct {
	Recipient string `json:"recipient"`
	Value     string `json:"value"`
}

type transferRequest struct {
	Value     string `json:"value"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender"`
}

type adjustRequest struct {
	Amount   uint64 `json:"amount"`
	Increase bool   `json:"increase"`
}

type addManagerRequest struct {
	ID string `json:"id"`
}

// Metadata returns the frozen currency metadata.
func (h *Handler) Metadata(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(CurrencyMetadata())
}

// Supply returns the total circulating amount.
func (h *Handler) Supply(c *fiber.Ctx) error {
	supply, err := h.service.Supply(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"supply": supply})
}

// Balance returns the tracked balance for an account.
func (h *Handler) Balance(c *fiber.Ctx) error {
	account := c.Params("account")
	balance, err := h.service.Balance(c.UserContext(), account)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account": account, "balance": balance})
}

// Mint creates new coins for a recipient and returns the signed bearer value.
func (h *Handler) Mint(c *fiber.Ctx) error {
	var req mintRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Recipient == "" {
		return fiber.NewError(http.StatusBadRequest, "recipient is required")
	}

	receipt, err := h.service.Mint(c.UserContext(), c.Get(ManagerIDHeader), req.Recipient, req.Amount)
	if err != nil {
		return httpError(err)
	}

	bearer, err := EncodeBearer(receipt.Value, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"value":     bearer,
		"recipient": req.Recipient,
		"balance":   receipt.Balance,
		"supply":    receipt.Supply,
	})
}

// Burn consumes a bearer value and destroys its amount.
func (h *Handler) Burn(c *fiber.Ctx) error {
	var req burnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	value, err := DecodeBearer(req.Value, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.service.Burn(c.UserContext(), c.Get(ManagerIDHeader), req.Recipient, value)
	if err != nil {
		return httpError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"recipient": req.Recipient,
		"balance":   receipt.Balance,
		"supply":    receipt.Supply,
	})
}

// Transfer consumes a bearer value and re-issues it to the recipient.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Sender == "" || req.Recipient == "" {
		return fiber.NewError(http.StatusBadRequest, "sender and recipient are required")
	}
	value, err := DecodeBearer(req.Value, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.service.Transfer(c.UserContext(), value, req.Recipient, req.Sender)
	if err != nil {
		return httpError(err)
	}

	bearer, err := EncodeBearer(receipt.Value, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"value":        bearer,
		"from_balance": receipt.FromBalance,
		"to_balance":   receipt.ToBalance,
	})
}

type splitRequest struct {
	Value  string `json:"value"`
	Amount uint64 `json:"amount"`
}

type joinRequest struct {
	Values []string `json:"values"`
}

// Split exchanges a bearer value for two values of amount and remainder.
func (h *Handler) Split(c *fiber.Ctx) error {
	var req splitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	value, err := DecodeBearer(req.Value, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	part, rest, err := h.service.Split(c.UserContext(), value, req.Amount)
	if err != nil {
		return httpError(err)
	}

	partBearer, err := EncodeBearer(part, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	restBearer, err := EncodeBearer(rest, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"value":     partBearer,
		"remainder": restBearer,
	})
}

// Join exchanges two bearer values for a single value carrying their sum.
func (h *Handler) Join(c *fiber.Ctx) error {
	var req joinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if len(req.Values) != 2 {
		return fiber.NewError(http.StatusBadRequest, "exactly two values are required")
	}
	first, err := DecodeBearer(req.Values[0], h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	second, err := DecodeBearer(req.Values[1], h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	joined, err := h.service.Join(c.UserContext(), first, second)
	if err != nil {
		return httpError(err)
	}

	bearer, err := EncodeBearer(joined, h.valueSecret)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"value": bearer})
}

// Adjust applies an administrative balance correction.
func (h *Handler) Adjust(c *fiber.Ctx) error {
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account := c.Params("account")

	balance, err := h.service.AdjustBalance(c.UserContext(), c.Get(ManagerIDHeader), account, req.Amount, req.Increase)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"account": account, "balance": balance})
}

// IsAuthorized reports manager membership for an identity.
func (h *Handler) IsAuthorized(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := h.service.IsAuthorized(c.UserContext(), id)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": id, "authorized": ok})
}

// AddManager registers a manager identity. Requires admin middleware upstream.
func (h *Handler) AddManager(c *fiber.Ctx) error {
	var req addManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ID == "" {
		return fiber.NewError(http.StatusBadRequest, "id is required")
	}

	if err := h.service.AddManager(c.UserContext(), h.adminCap(c), req.ID); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": req.ID})
}

// RemoveManager deletes a manager identity. Requires admin middleware upstream.
func (h *Handler) RemoveManager(c *fiber.Ctx) error {
	if err := h.service.RemoveManager(c.UserContext(), h.adminCap(c), c.Params("id")); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) adminCap(c *fiber.Ctx) *AdminCap {
	secret, _ := c.Locals(AdminSecretLocal).(string)
	if secret == "" {
		return nil
	}
	return &AdminCap{secret: secret}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, "unauthorized")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return fiber.NewError(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return fiber.NewError(http.StatusBadRequest, "balance overflow")
	case errors.Is(err, ledger.ErrDuplicateManager):
		return fiber.NewError(http.StatusConflict, "manager already registered")
	case errors.Is(err, ledger.ErrManagerNotFound):
		return fiber.NewError(http.StatusNotFound, "manager not found")
	case errors.Is(err, ErrValueSpent):
		return fiber.NewError(http.StatusConflict, "token value already spent")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
