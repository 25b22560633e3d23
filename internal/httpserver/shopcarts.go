package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/query"
	shopcartsvc "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/service/shopcart"
)

type shopcartHandlers struct {
	svc    *shopcartsvc.Service
	logger *log.Logger
}

func (h *shopcartHandlers) create(c *gin.Context) {
	var in shopcartsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadJSON(c)
		return
	}
	cart, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/shopcarts/%d", cart.CustomerID))
	c.JSON(http.StatusCreated, toCartView(*cart))
}

func (h *shopcartHandlers) list(c *gin.Context) {
	filters, err := query.ParseCartFilters(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	carts, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]cartView, 0, len(carts))
	for _, cart := range carts {
		views = append(views, toCartView(cart))
	}
	c.JSON(http.StatusOK, views)
}

func (h *shopcartHandlers) get(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	cart, err := h.svc.Find(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerView(*cart))
}

func (h *shopcartHandlers) update(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	var in shopcartsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadJSON(c)
		return
	}
	cart, err := h.svc.Update(c.Request.Context(), customerID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(*cart))
}

func (h *shopcartHandlers) delete(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), customerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// transitionTo builds a status-action handler (checkout, cancel, lock,
// expire, reactivate).
func (h *shopcartHandlers) transitionTo(target domain.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, ok := pathID(c, "customer_id")
		if !ok {
			return
		}
		cart, err := h.svc.Transition(c.Request.Context(), customerID, target)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(*cart))
	}
}

func (h *shopcartHandlers) totals(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	totals, err := h.svc.Totals(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTotalsView(customerID, totals))
}

// pathID parses an integer path segment; a non-integer segment is a 404, the
// same outcome as an unmatched route.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %s must be an integer", domain.ErrNotFound, name))
		return 0, false
	}
	return id, true
}
