package mockapi

import (
	"context"
	"fmt"
)

// Seed fills an empty store with a small catalog plus the read-only
// orders and order requests, which the API cannot create. Collections
// that already hold records are left alone.
func Seed(ctx context.Context, store Store) error {
	for _, batch := range seedData() {
		rows, err := store.List(ctx, batch.collection)
		if err != nil {
			return fmt.Errorf("seed %s: %w", batch.collection, err)
		}
		if len(rows) > 0 {
			continue
		}
		for _, data := range batch.records {
			if _, err := store.Create(ctx, batch.collection, data, ""); err != nil {
				return fmt.Errorf("seed %s: %w", batch.collection, err)
			}
		}
	}
	return nil
}

type seedBatch struct {
	collection string
	records    []map[string]any
}

func seedData() []seedBatch {
	return []seedBatch{
		{"categories", []map[string]any{
			{"title": "Sofas", "created_at": "2024-05-02 10:15:00"},
			{"title": "Tables", "created_at": "2024-05-02 10:16:00"},
		}},
		{"products", []map[string]any{
			{"name": "Oak Dining Table", "cost": 24999, "category_id": 2, "description": "Seats six.", "images": []any{}},
			{"name": "Linen Sofa", "cost": 54999, "category_id": 1, "description": "Three seater.", "images": []any{}},
		}},
		{"orders", []map[string]any{
			seedOrder("Asha Verma", "asha@example.com", "processing", "cod", 24999, 500),
			seedOrder("Rohan Mehta", "rohan@example.com", "delivered", "razorpay", 54999, 0),
		}},
		{"order_requests", []map[string]any{
			{"name": "Neha Kapoor", "email": "neha@example.com", "phone": "9876543210", "total_price": 249990, "status": "pending", "created_at": "2024-06-01 12:00:00"},
		}},
		{"coupon", []map[string]any{
			{"name": "WELCOME10", "discount": 10},
		}},
	}
}

func seedOrder(name, email, status, method string, subtotal, shipping int) map[string]any {
	return map[string]any{
		"status":     status,
		"created_at": "2024-06-10 09:30:00",
		"customer": map[string]any{
			"name":    name,
			"email":   email,
			"phone":   "9000000000",
			"address": "12 MG Road, Bengaluru",
		},
		"summary": map[string]any{
			"subtotal": subtotal,
			"shipping": shipping,
			"total":    subtotal + shipping,
		},
		"payment": map[string]any{
			"method": method,
			"status": "paid",
		},
		"items": []any{
			map[string]any{"name": "Catalog item", "qty": 1, "price": subtotal},
		},
	}
}
