package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verixa/internal/model"
)

func TestStore_AddToCartValidation(t *testing.T) {
	s := Open(NewMemoryStorage(), nil)
	p := product("1", "35.00")

	tests := []struct {
		name  string
		size  string
		color string
		field string
	}{
		{"no size", "", "White", "size"},
		{"no color", "M", "", "color"},
		{"unknown size", "XXXL", "White", "size"},
		{"unknown color", "M", "Plaid", "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddToCart(p, tt.size, tt.color)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, s.CartCount())
}

func TestStore_PersistsAndReloads(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "state"))

	s := Open(storage, nil)
	require.NoError(t, s.AddToCart(product("1", "35.00"), "M", "White"))
	require.NoError(t, s.AddToCart(product("1", "35.00"), "M", "White"))
	require.NoError(t, s.AddToCart(product("3", "55.00"), "S", "Black"))
	require.NoError(t, s.ToggleWishlist("6"))

	reopened := Open(storage, nil)
	assert.Equal(t, "125.00", reopened.CartTotal().StringFixed(2))
	assert.Equal(t, 3, reopened.CartCount())
	assert.True(t, reopened.IsWishlisted("6"))

	state := reopened.State()
	require.Len(t, state.Cart, 2)
	assert.Equal(t, "Tee 1", state.Cart[0].Product.Name)
	assert.Equal(t, []string{"S", "M", "L"}, state.Cart[0].Product.Sizes)
}

func TestStore_EveryMutationIsPersisted(t *testing.T) {
	storage := NewMemoryStorage()
	s := Open(storage, nil)

	require.NoError(t, s.AddToCart(product("1", "35.00"), "M", "White"))
	require.NoError(t, s.UpdateQuantity("1", "M", "White", 5))
	assert.Equal(t, 5, Open(storage, nil).CartCount())

	require.NoError(t, s.RemoveFromCart("1", "M", "White"))
	assert.Equal(t, 0, Open(storage, nil).CartCount())

	require.NoError(t, s.ToggleWishlist("2"))
	assert.True(t, Open(storage, nil).IsWishlisted("2"))

	require.NoError(t, s.AddToCart(product("2", "48.00"), "L", "Black"))
	require.NoError(t, s.ClearCart())
	reopened := Open(storage, nil)
	assert.Equal(t, 0, reopened.CartCount())
	assert.True(t, reopened.IsWishlisted("2"))
}

func TestStore_MissingStorageStartsEmpty(t *testing.T) {
	s := Open(NewFileStorage(filepath.Join(t.TempDir(), "never-created")), nil)
	assert.Empty(t, s.State().Cart)
	assert.Empty(t, s.State().Wishlist)
}

func TestStore_CorruptStorageStartsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		cart     string
		wishlist string
	}{
		{"garbage", "{not json", "%%%"},
		{"wrong shape", `{"cart": 1}`, `{"id": "1"}`},
		{"invalid entry", `[{"product":{"id":"1"},"selected_size":"M","selected_color":"White","quantity":0}]`, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save(CartKey, []byte(tt.cart)))
			require.NoError(t, storage.Save(WishlistKey, []byte(tt.wishlist)))

			var s *Store
			require.NotPanics(t, func() { s = Open(storage, nil) })
			assert.Empty(t, s.State().Cart)
			assert.Empty(t, s.State().Wishlist)

			// The session stays usable after degrading.
			require.NoError(t, s.ToggleWishlist("1"))
			assert.True(t, s.IsWishlisted("1"))
		})
	}
}

func TestStore_WishlistDedupedOnLoad(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(WishlistKey, []byte(`["1","2","1",""]`)))

	s := Open(storage, nil)
	assert.Equal(t, []string{"1", "2"}, s.State().Wishlist)
}

func TestFileStorage_WritesOneFilePerKey(t *testing.T) {
	dir := t.TempDir()
	s := Open(NewFileStorage(dir), nil)
	require.NoError(t, s.ToggleWishlist("3"))

	data, err := os.ReadFile(filepath.Join(dir, WishlistKey+".json"))
	require.NoError(t, err)
	assert.JSONEq(t, `["3"]`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, CartKey+".json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

type failingStorage struct {
	*MemoryStorage
}

func (failingStorage) Save(string, []byte) error { return errors.New("disk full") }

func TestStore_PersistFailureKeepsStateAndReportsError(t *testing.T) {
	s := Open(failingStorage{NewMemoryStorage()}, nil)

	err := s.ToggleWishlist("1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, s.IsWishlisted("1"))
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := Open(NewMemoryStorage(), nil)
	p := product("1", "35.00")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddToCart(p, "M", "White"))
		}()
	}
	wg.Wait()

	state := s.State()
	require.Len(t, state.Cart, 1)
	assert.Equal(t, 20, state.Cart[0].Quantity)
}
