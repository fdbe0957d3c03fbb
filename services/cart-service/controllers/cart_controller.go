package controllers

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront/services/cart-service/models"
	"github.com/yashrajoria/storefront/services/cart-service/services"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
)

const (
	CartIDHeader   = "X-Cart-ID"
	TenantIDHeader = "X-Tenant-ID"

	cartIDKey   = "cart_id"
	tenantIDKey = "cart_tenant_id"
)

var cartIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CartScope reads the cart and tenant headers every cart route needs.
func CartScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := c.GetHeader(CartIDHeader)
		if !cartIDPattern.MatchString(cartID) {
			apperrors.Respond(c, apperrors.Validation("%s header is missing or invalid", CartIDHeader))
			return
		}
		tenantID, err := strconv.ParseInt(c.GetHeader(TenantIDHeader), 10, 64)
		if err != nil || tenantID <= 0 {
			apperrors.Respond(c, apperrors.Validation("%s header is missing or invalid", TenantIDHeader))
			return
		}
		c.Set(cartIDKey, cartID)
		c.Set(tenantIDKey, tenantID)
		c.Next()
	}
}

type CartController struct {
	service *services.CartService
}

func NewCartController(svc *services.CartService) *CartController {
	return &CartController{service: svc}
}

func scope(c *gin.Context) (int64, string) {
	return c.GetInt64(tenantIDKey), c.GetString(cartIDKey)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		apperrors.Respond(c, apperrors.Validation("invalid product id %q", c.Param("product_id")))
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, view *models.CartView, err error) {
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetCart handles GET /cart
func (cc *CartController) GetCart(c *gin.Context) {
	tenantID, cartID := scope(c)
	view, err := cc.service.Get(c.Request.Context(), tenantID, cartID)
	respond(c, view, err)
}

// AddItem handles POST /cart/items
func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	tenantID, cartID := scope(c)
	view, err := cc.service.AddItem(c.Request.Context(), tenantID, cartID, req)
	respond(c, view, err)
}

// SetQuantity handles PUT /cart/items/:product_id
func (cc *CartController) SetQuantity(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	tenantID, cartID := scope(c)
	view, err := cc.service.SetQuantity(c.Request.Context(), tenantID, cartID, id, *req.Quantity)
	respond(c, view, err)
}

// RemoveItem handles DELETE /cart/items/:product_id
func (cc *CartController) RemoveItem(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	tenantID, cartID := scope(c)
	view, err := cc.service.RemoveItem(c.Request.Context(), tenantID, cartID, id)
	respond(c, view, err)
}

// ClearCart handles DELETE /cart
func (cc *CartController) ClearCart(c *gin.Context) {
	tenantID, cartID := scope(c)
	view, err := cc.service.Clear(c.Request.Context(), tenantID, cartID)
	respond(c, view, err)
}

// Checkout handles POST /cart/checkout
func (cc *CartController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}
	tenantID, cartID := scope(c)
	resp, err := cc.service.Checkout(c.Request.Context(), tenantID, cartID, req.Domain)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
