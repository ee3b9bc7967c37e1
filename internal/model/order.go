package model

// OrderStatusPending is the status written at checkout. Admin flows move
// orders through further states; the storefront only ever creates pending
// orders.
const OrderStatusPending = "pending"

// Order is a normalized order record. CreatedAt is always a plain ISO-8601
// string; raw document-store timestamp shapes never reach this type.
type Order struct {
	ID        string      `json:"id"`
	UID       string      `json:"uid"`
	Email     string      `json:"email"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	Address   Address     `json:"address"`
	Lines     []OrderLine `json:"items"`
	CreatedAt string      `json:"createdAt"`
}

// Address holds delivery information captured at checkout.
type Address struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Street string `json:"street"`
	City   string `json:"city"`
}

// OrderLine is an embedded cart-line snapshot inside an order.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// BelongsTo reports whether the order's identity-linking fields match the
// given identity and email. A partial match (email matches, uid does not) is
// not repaired here; callers flag it for reconciliation.
func (o Order) BelongsTo(identity Identity, email string) bool {
	return o.UID == string(identity) && o.Email == email
}
