package draft

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
	"medeasy/pos/internal/migrations"
)

var fixedNow = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("draft-%d", n)
	}
}

func newTestCollection(b Backend) *Collection {
	return NewCollection(b, WithClock(func() time.Time { return fixedNow }), WithIDGenerator(sequentialIDs()))
}

func liveSession(t *testing.T) *cart.Session {
	t.Helper()
	sess := &cart.Session{}
	require.NoError(t, sess.SelectCustomer(domain.Patient{ID: 3, Name: "Nusrat", Phone: "01700000000"}, false))
	item := domain.CatalogItem{ID: 5, Name: "Maxpro 20", Variations: []domain.Variation{{
		ID: 50, SKU: "MAX-20", UnitPrice: decimal.RequireFromString("7.25"), Stock: 30, Unit: "strip",
		Tiers: []domain.QuantityDiscountTier{{MinimumQuantity: 10, Kind: domain.DiscountPercent, Value: decimal.RequireFromString("5")}},
	}}}
	_, err := sess.AddLine(item, 0)
	require.NoError(t, err)
	_, err = sess.UpdateQuantity(0, 12)
	require.NoError(t, err)
	_, err = sess.SetDiscount(domain.Discount{Kind: domain.DiscountFlat, Value: decimal.RequireFromString("3.50")})
	require.NoError(t, err)
	_, err = sess.SetDeliveryCharge(decimal.RequireFromString("20"))
	require.NoError(t, err)
	_, err = sess.SetRoundOff(true)
	require.NoError(t, err)
	sess.Payment = domain.PaymentDetails{Method: domain.PaymentCash, ReceivedAmount: decimal.RequireFromString("120"), Note: "pay later"}
	return sess
}

func TestPark_RoundTrip(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	sess := liveSession(t)
	before := sess.Clone()

	id, err := Park(store, sess, "Nusrat evening")
	require.NoError(t, err)
	assert.Equal(t, "draft-1", id)
	assert.Nil(t, sess.Customer, "parking clears the live session")
	assert.True(t, sess.Cart.IsEmpty())

	got, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "Nusrat evening", got.Name)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, *before.Customer, got.Customer)
	assert.True(t, before.Cart.Equal(got.Cart))
	assert.Equal(t, before.Payment.Method, got.Payment.Method)
	assert.True(t, before.Payment.ReceivedAmount.Equal(got.Payment.ReceivedAmount))
	assert.Equal(t, before.Payment.Note, got.Payment.Note)
	assert.True(t, before.Cart.Totals().FinalTotal.Equal(got.Cart.Totals().FinalTotal))
}

func TestPark_Guards(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())

	_, err := Park(store, &cart.Session{}, "x")
	assert.ErrorIs(t, err, cart.ErrNoCustomerSelected)

	sess := &cart.Session{}
	require.NoError(t, sess.SelectCustomer(domain.Patient{ID: 1}, false))
	_, err = Park(store, sess, "x")
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	drafts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestResume_ReplacesSessionAndTagsDraft(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	parked := liveSession(t)
	id, err := Park(store, parked, "first")
	require.NoError(t, err)

	sess := &cart.Session{}
	d, err := Resume(store, sess, id, false)
	require.NoError(t, err)

	assert.Equal(t, id, sess.DraftID)
	require.NotNil(t, sess.Customer)
	assert.Equal(t, int64(3), sess.Customer.ID)
	assert.True(t, d.Cart.Equal(sess.Cart))

	// The live session holds no reference into the loaded draft.
	sess.Cart.Lines[0].Quantity = 1
	assert.Equal(t, int64(12), d.Cart.Lines[0].Quantity)
}

func TestResume_RefusesToOverwriteLiveCart(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	id, err := Park(store, liveSession(t), "first")
	require.NoError(t, err)
	busy := liveSession(t)

	_, err = Resume(store, busy, id, false)
	assert.ErrorIs(t, err, cart.ErrUnsavedCart)
	assert.Empty(t, busy.DraftID)

	_, err = Resume(store, busy, id, true)
	require.NoError(t, err)
	assert.Equal(t, id, busy.DraftID)

	_, err = Resume(store, busy, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPark_ResumedDraftIsSuperseded(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	id, err := Park(store, liveSession(t), "first")
	require.NoError(t, err)
	sess := &cart.Session{}
	_, err = Resume(store, sess, id, false)
	require.NoError(t, err)

	newID, err := Park(store, sess, "second")
	require.NoError(t, err)

	drafts, err := store.List()
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, newID, drafts[0].ID)
}

// removeFailingStore refuses to remove one draft id.
type removeFailingStore struct {
	Store
	failID string
}

func (s removeFailingStore) Remove(id string) error {
	if id == s.failID {
		return errors.New("backend offline")
	}
	return s.Store.Remove(id)
}

func TestPark_SupersedeFailureKeepsSession(t *testing.T) {
	inner := newTestCollection(NewMemoryBackend())
	oldID, err := Park(inner, liveSession(t), "first")
	require.NoError(t, err)
	sess := &cart.Session{}
	_, err = Resume(inner, sess, oldID, false)
	require.NoError(t, err)

	_, err = Park(removeFailingStore{Store: inner, failID: oldID}, sess, "second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend offline")

	assert.Equal(t, oldID, sess.DraftID)
	assert.NotNil(t, sess.Customer)
	assert.False(t, sess.Cart.IsEmpty())
	drafts, err := inner.List()
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, oldID, drafts[0].ID)
}

func TestPark_SupersededDraftAlreadyGone(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	oldID, err := Park(store, liveSession(t), "first")
	require.NoError(t, err)
	sess := &cart.Session{}
	_, err = Resume(store, sess, oldID, false)
	require.NoError(t, err)
	require.NoError(t, store.Remove(oldID))

	newID, err := Park(store, sess, "second")
	require.NoError(t, err)
	assert.Nil(t, sess.Customer)
	drafts, err := store.List()
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, newID, drafts[0].ID)
}

func TestCollection_RemoveAndList(t *testing.T) {
	store := newTestCollection(NewMemoryBackend())
	for _, name := range []string{"a", "b", "c"} {
		_, err := store.Save(Draft{Name: name, Customer: domain.Patient{ID: 1}})
		require.NoError(t, err)
	}

	require.NoError(t, store.Remove("draft-2"))
	assert.ErrorIs(t, store.Remove("draft-2"), ErrNotFound)

	drafts, err := store.List()
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "a", drafts[0].Name)
	assert.Equal(t, "c", drafts[1].Name)

	_, err = store.Load("draft-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLBackend(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	backendRoundTrip(t, NewSQLBackend(db))
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backendRoundTrip(t, NewRedisBackend(client))

	raw, err := mr.Get(Key)
	require.NoError(t, err)
	assert.Contains(t, raw, `"name":"other"`)
}

func backendRoundTrip(t *testing.T, b Backend) {
	t.Helper()
	data, err := b.Read()
	require.NoError(t, err)
	assert.Empty(t, data)

	store := newTestCollection(b)
	id, err := Park(store, liveSession(t), "persisted")
	require.NoError(t, err)
	_, err = store.Save(Draft{Name: "other", Customer: domain.Patient{ID: 9}})
	require.NoError(t, err)

	got, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "Nusrat", got.Customer.Name)
	require.Len(t, got.Cart.Lines, 1)
	assert.Equal(t, int64(12), got.Cart.Lines[0].Quantity)

	require.NoError(t, store.Remove(id))
	drafts, err := store.List()
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "other", drafts[0].Name)
}
