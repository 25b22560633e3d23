// Package importer bulk-loads shopcarts from CSV exports. Each row is one
// item line (customer_id, product_id, quantity, price, description); rows for
// the same customer are applied together through the cart's bulk merge, so
// re-running an import is idempotent.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/domain"
	shopcartsvc "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/service/shopcart"
)

// CSVImporter reads item rows and upserts shopcarts through the service.
type CSVImporter struct {
	reader *csv.Reader
	svc    *shopcartsvc.Service
}

func NewCSVImporter(r io.Reader, svc *shopcartsvc.Service) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may omit trailing description columns
	return &CSVImporter{reader: csvr, svc: svc}
}

// Run parses CSV rows grouped by customer and applies them. It returns the
// number of carts written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"customer_id", "product_id", "quantity"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	var order []int64
	itemsByCustomer := make(map[int64][]domain.ItemPayload)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}

		customerID, err := strconv.ParseInt(field(record, index, "customer_id"), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: bad customer_id: %w", line, err)
		}
		if _, seen := itemsByCustomer[customerID]; !seen {
			order = append(order, customerID)
		}
		var price any
		if raw := field(record, index, "price"); raw != "" {
			price = raw
		}
		itemsByCustomer[customerID] = append(itemsByCustomer[customerID], domain.ItemPayload{
			ProductID:   field(record, index, "product_id"),
			Quantity:    field(record, index, "quantity"),
			Price:       price,
			Description: field(record, index, "description"),
		})
	}

	imported := 0
	for _, customerID := range order {
		if err := i.applyCart(ctx, customerID, itemsByCustomer[customerID]); err != nil {
			return imported, fmt.Errorf("customer %d: %w", customerID, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) applyCart(ctx context.Context, customerID int64, items []domain.ItemPayload) error {
	_, err := i.svc.SetItems(ctx, customerID, items)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = i.svc.Create(ctx, shopcartsvc.CreateInput{CustomerID: customerID, Items: items})
	return err
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
