package catalog

import (
	"log"

	"casahogar-storefront-api/internal/docstore"
	"casahogar-storefront-api/internal/model"
)

// productFromDoc maps a catalog document into a Product, normalizing
// category casing and the stock-control flag on every record.
func productFromDoc(doc docstore.Document) model.Product {
	stock := doc.Int("stock")
	control, present := doc.Bool("hasStockControl")
	if !present {
		control = stock != model.StockUnlimited
	}

	return model.Product{
		ID:              doc.ID,
		Title:           doc.String("title"),
		Price:           doc.Float("price"),
		ImageURL:        doc.String("imageUrl"),
		Category:        model.NormalizeCategory(doc.String("category")),
		Subcategory:     model.NormalizeCategory(doc.String("subcategory")),
		Description:     doc.String("description"),
		Stock:           stock,
		HasStockControl: control,
		CreatedAt:       doc.TimeString("createdAt"),
	}
}

// orderFromDoc maps an order document into an Order. The document is
// normalized first, so no raw timestamp shape survives. The canonical
// identity field is uid; userId and userid exist only here, as the
// back-compat read path for records written before the field was unified.
func orderFromDoc(doc docstore.Document) model.Order {
	doc = doc.Normalized()

	uid := doc.String("uid")
	for _, legacy := range []string{"userId", "userid"} {
		v := doc.String(legacy)
		if v == "" {
			continue
		}
		if uid == "" {
			uid = v
		} else if v != uid {
			// Not auto-repaired; a reconciliation pass owns these.
			log.Printf("[OrderCache] order %s: identity mismatch between uid and %s", doc.ID, legacy)
		}
	}

	email := doc.String("email")
	if email == "" {
		email = doc.String("userEmail")
	}

	order := model.Order{
		ID:        doc.ID,
		UID:       uid,
		Email:     email,
		Status:    doc.String("status"),
		Total:     doc.Float("total"),
		CreatedAt: doc.String("createdAt"),
	}

	if addr, ok := doc.Fields["address"].(map[string]any); ok {
		a := docstore.Document{Fields: addr}
		order.Address = model.Address{
			Name:   a.String("name"),
			Phone:  a.String("phone"),
			Street: a.String("street"),
			City:   a.String("city"),
		}
	}

	if items, ok := doc.Fields["items"].([]any); ok {
		for _, item := range items {
			fields, ok := item.(map[string]any)
			if !ok {
				continue
			}
			l := docstore.Document{Fields: fields}
			order.Lines = append(order.Lines, model.OrderLine{
				ProductID: l.String("productId"),
				Title:     l.String("title"),
				Price:     l.Float("price"),
				Quantity:  l.Int("quantity"),
			})
		}
	}

	return order
}
