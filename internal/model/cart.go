package model

// CartLine is a single cart entry: a product snapshot taken at add time plus
// the selected quantity. There is exactly one line per product id within a
// cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns the line price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}
