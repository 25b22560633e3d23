package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/query"
	shopcartsvc "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/service/shopcart"
)

func (h *shopcartHandlers) addItem(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	var in shopcartsvc.AddItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadJSON(c)
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), customerID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItemView(*item))
}

func (h *shopcartHandlers) listItems(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	filters, err := query.ParseItemFilters(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.svc.ListItems(c.Request.Context(), customerID, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}
	c.JSON(http.StatusOK, views)
}

func (h *shopcartHandlers) getItem(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	identifier, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), customerID, identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemView(*item))
}

func (h *shopcartHandlers) updateItem(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	identifier, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var in shopcartsvc.UpdateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadJSON(c)
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), customerID, identifier, in)
	if err != nil {
		respondError(c, err)
		return
	}
	// Quantity 0 deleted the item.
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toItemView(*item))
}

func (h *shopcartHandlers) removeItem(c *gin.Context) {
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	identifier, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), customerID, identifier); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
