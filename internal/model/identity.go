package model

// Identity is the owner of a cart: either the guest identity or an
// authenticated user id.
type Identity string

// Guest is the identity used before sign-in and after sign-out.
const Guest Identity = "guest"

// IsGuest reports whether the identity is the shared guest identity.
func (i Identity) IsGuest() bool {
	return i == Guest || i == ""
}

// CartKey returns the durable-storage key holding this identity's cart.
func (i Identity) CartKey() string {
	if i.IsGuest() {
		return "cart_guest"
	}
	return "cart_" + string(i)
}
