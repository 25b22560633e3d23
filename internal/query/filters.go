// Package query normalizes the heterogeneous, alias-laden query parameters of
// the list endpoints into validated predicates.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
)

// CartFilters holds the validated predicates for shopcart listing.
// MinTotal/MaxTotal bound a derived value and cannot be pushed into storage.
type CartFilters struct {
	Status        *domain.Status
	CustomerID    *int64
	CreatedBefore *time.Time
	CreatedAfter  *time.Time
	MaxTotal      *decimal.Decimal
	MinTotal      *decimal.Decimal
}

// ItemFilters holds the validated predicates for item listing within one cart.
// Status filters on the parent cart's status, not on the item.
type ItemFilters struct {
	Description *string
	ProductID   *int64
	Quantity    *int
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Status      *string
}

// statusAliases maps friendly legacy names onto canonical statuses.
var statusAliases = map[string]domain.Status{
	"open":      domain.StatusActive,
	"active":    domain.StatusActive,
	"closed":    domain.StatusAbandoned,
	"abandoned": domain.StatusAbandoned,
	"purchased": domain.StatusLocked,
	"locked":    domain.StatusLocked,
	"merged":    domain.StatusExpired,
	"expired":   domain.StatusExpired,
}

var cartFilterFields = map[string]struct{}{
	"status":         {},
	"customer_id":    {},
	"created_before": {},
	"created_after":  {},
	"max_total":      {},
	"min_total":      {},
	"total_price_lt": {},
	"total_price_gt": {},
}

var itemFilterFields = map[string]struct{}{
	"description": {},
	"product_id":  {},
	"sku":         {},
	"quantity":    {},
	"min_price":   {},
	"max_price":   {},
	"status":      {},
}

// ParseCartFilters validates the query parameters of the cart list endpoint.
func ParseCartFilters(values url.Values) (CartFilters, error) {
	var filters CartFilters
	if err := rejectUnsupported(values, cartFilterFields); err != nil {
		return filters, err
	}

	if values.Has("status") {
		status, err := parseStatusFilter(values.Get("status"))
		if err != nil {
			return filters, err
		}
		filters.Status = &status
	}
	if values.Has("customer_id") {
		id, err := strconv.ParseInt(strings.TrimSpace(values.Get("customer_id")), 10, 64)
		if err != nil {
			return filters, domain.NewValidationError("customer_id", "customer_id must be an integer when provided.")
		}
		filters.CustomerID = &id
	}
	for _, field := range []string{"created_before", "created_after"} {
		if !values.Has(field) {
			continue
		}
		ts, err := parseISO8601(values.Get(field), field)
		if err != nil {
			return filters, err
		}
		if field == "created_before" {
			filters.CreatedBefore = &ts
		} else {
			filters.CreatedAfter = &ts
		}
	}

	maxTotal, err := parseTotalBound(values, "max_total", "total_price_lt")
	if err != nil {
		return filters, err
	}
	filters.MaxTotal = maxTotal

	minTotal, err := parseTotalBound(values, "min_total", "total_price_gt")
	if err != nil {
		return filters, err
	}
	filters.MinTotal = minTotal

	if filters.MaxTotal != nil && filters.MinTotal != nil && filters.MaxTotal.LessThan(*filters.MinTotal) {
		return filters, domain.NewValidationError("max_total", "max_total must be greater than or equal to min_total.")
	}
	return filters, nil
}

// ParseItemFilters validates the query parameters of the item list endpoint.
func ParseItemFilters(values url.Values) (ItemFilters, error) {
	var filters ItemFilters
	if err := rejectUnsupported(values, itemFilterFields); err != nil {
		return filters, err
	}

	if values.Has("description") {
		description := strings.TrimSpace(values.Get("description"))
		if description == "" {
			return filters, domain.NewValidationError("description", "description must be a non-empty string when provided")
		}
		filters.Description = &description
	}

	// sku is a legacy alias for product_id; the canonical name wins when both
	// are present.
	productRaw, productField := "", ""
	if values.Has("product_id") {
		productRaw, productField = values.Get("product_id"), "product_id"
	} else if values.Has("sku") {
		productRaw, productField = values.Get("sku"), "sku"
	}
	if productField != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(productRaw), 10, 64)
		if err != nil {
			return filters, domain.NewValidationError(productField, "product_id (or sku) must be an integer")
		}
		filters.ProductID = &id
	}

	if values.Has("quantity") {
		quantity, err := strconv.Atoi(strings.TrimSpace(values.Get("quantity")))
		if err != nil {
			return filters, domain.NewValidationError("quantity", "quantity must be an integer")
		}
		filters.Quantity = &quantity
	}

	for _, field := range []string{"min_price", "max_price"} {
		if !values.Has(field) {
			continue
		}
		bound, err := parsePriceBound(values.Get(field), field)
		if err != nil {
			return filters, err
		}
		if field == "min_price" {
			filters.MinPrice = &bound
		} else {
			filters.MaxPrice = &bound
		}
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return filters, domain.NewValidationError("min_price", "min_price must be less than or equal to max_price")
	}

	if values.Has("status") {
		status := values.Get("status")
		filters.Status = &status
	}
	return filters, nil
}

// MatchItem applies the non-status predicates to one item.
func (f ItemFilters) MatchItem(item domain.ShopcartItem) bool {
	if f.Description != nil && !strings.Contains(strings.ToLower(item.Description), strings.ToLower(*f.Description)) {
		return false
	}
	if f.ProductID != nil && item.ProductID != *f.ProductID {
		return false
	}
	if f.Quantity != nil && item.Quantity != *f.Quantity {
		return false
	}
	if f.MinPrice != nil && item.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && item.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// MatchCartStatus reports whether the parent cart satisfies the status
// predicate. A mismatch yields an empty item list, never an error.
func (f ItemFilters) MatchCartStatus(cartStatus domain.Status) bool {
	if f.Status == nil {
		return true
	}
	return strings.TrimSpace(strings.ToLower(*f.Status)) == string(cartStatus)
}

func rejectUnsupported(values url.Values, supported map[string]struct{}) error {
	var unsupported []string
	for key := range values {
		if _, ok := supported[key]; !ok {
			unsupported = append(unsupported, key)
		}
	}
	if len(unsupported) == 0 {
		return nil
	}
	sort.Strings(unsupported)
	if len(unsupported) == 1 {
		return domain.NewValidationError(unsupported[0], "%s is not a supported filter parameter", unsupported[0])
	}
	joined := strings.Join(unsupported, ", ")
	return domain.NewValidationError(joined, "%s are not supported filter parameters", joined)
}

func parseStatusFilter(raw string) (domain.Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", domain.NewValidationError("status", "status must be a non-empty value when provided.")
	}
	if status, ok := statusAliases[normalized]; ok {
		return status, nil
	}
	allowed := []string{"OPEN", "CLOSED", "PURCHASED", "MERGED"}
	for _, s := range domain.Statuses() {
		allowed = append(allowed, string(s))
	}
	sort.Strings(allowed)
	return "", domain.NewValidationError("status", "Invalid status '%s'. Allowed values: %s.", raw, strings.Join(allowed, ", "))
}

func parseTotalBound(values url.Values, canonical, alias string) (*decimal.Decimal, error) {
	field := canonical
	if !values.Has(canonical) {
		if !values.Has(alias) {
			return nil, nil
		}
		field = alias
	}
	cleaned := strings.TrimSpace(values.Get(field))
	if cleaned == "" {
		return nil, domain.NewValidationError(field, "%s must be a non-empty decimal value when provided.", field)
	}
	bound, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, domain.NewValidationError(field, "%s must be a valid decimal number: %s", field, values.Get(field))
	}
	return &bound, nil
}

func parsePriceBound(raw, field string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, domain.NewValidationError(field, "%s must be a number", field)
	}
	bound, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "%s must be a number", field)
	}
	return bound, nil
}

// parseISO8601 accepts full RFC3339 timestamps as well as naive date-times
// and bare dates; naive values are taken as already-UTC.
func parseISO8601(raw, field string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return time.Time{}, domain.NewValidationError(field, "%s must be a non-empty ISO8601 timestamp when provided.", field)
	}
	// A '+' in a raw query string decodes to a space; restore it so offsets
	// like 2024-01-01T00:00:00 05:30 still parse.
	normalized := strings.ReplaceAll(cleaned, " ", "+")
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, normalized); err == nil {
			return ts.UTC(), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, cleaned, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, domain.NewValidationError(field, "%s must be a valid ISO8601 timestamp: %s", field, cleaned)
}
