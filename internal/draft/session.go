package draft

import (
	"errors"
	"fmt"

	"medeasy/pos/internal/cart"
)

// Park saves a deep copy of the live session as a named draft and then clears
// the session, customer included. On error the session is left as it was.
func Park(store Store, sess *cart.Session, name string) (string, error) {
	if sess.Customer == nil {
		return "", cart.ErrNoCustomerSelected
	}
	if sess.Cart.IsEmpty() {
		return "", cart.ErrEmptyCart
	}
	snap := sess.Clone()
	id, err := store.Save(Draft{
		Name:     name,
		Customer: *snap.Customer,
		Cart:     snap.Cart,
		Payment:  snap.Payment,
	})
	if err != nil {
		return "", err
	}
	// Re-parking a resumed draft supersedes the old copy. If the old copy
	// cannot be removed the new one is withdrawn and the session kept.
	if sess.DraftID != "" {
		if err := store.Remove(sess.DraftID); err != nil && !errors.Is(err, ErrNotFound) {
			if rbErr := store.Remove(id); rbErr != nil {
				return "", fmt.Errorf("remove superseded draft %s: %w (withdraw %s: %v)", sess.DraftID, err, id, rbErr)
			}
			return "", fmt.Errorf("remove superseded draft %s: %w", sess.DraftID, err)
		}
	}
	sess.Reset()
	return id, nil
}

// Resume loads a draft into the live session, replacing everything in it, and
// tags the session with the draft id. A live cart with lines is only
// overwritten when discard is set.
func Resume(store Store, sess *cart.Session, id string, discard bool) (Draft, error) {
	d, err := store.Load(id)
	if err != nil {
		return Draft{}, err
	}
	if !sess.Cart.IsEmpty() && !discard {
		return Draft{}, cart.ErrUnsavedCart
	}
	customer := d.Customer
	*sess = cart.Session{
		Customer: &customer,
		Cart:     d.Cart.Clone(),
		Payment:  d.Payment,
		DraftID:  d.ID,
	}
	return d, nil
}
