package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataranlabs/storefront-backend/internal/inventory"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/config"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// scriptedChecker answers each call with the scripted function, tracking
// call order for debounce and sequencing assertions.
type scriptedChecker struct {
	mu      sync.Mutex
	calls   int
	batches [][]inventory.Item
	respond func(call int, items []inventory.Item) (*inventory.CheckResult, error)
}

func (c *scriptedChecker) CheckCart(_ context.Context, items []inventory.Item) (*inventory.CheckResult, bool, error) {
	c.mu.Lock()
	c.calls++
	call := c.calls
	c.batches = append(c.batches, items)
	respond := c.respond
	c.mu.Unlock()

	if respond == nil {
		return cleanResult(), false, nil
	}
	result, err := respond(call, items)
	return result, false, err
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type stubCheckoutCreator struct {
	mu       sync.Mutex
	checkout *commerce.Checkout
	err      error
	lines    []commerce.CheckoutLine
}

func (s *stubCheckoutCreator) CreateCheckout(_ context.Context, lines []commerce.CheckoutLine) (*commerce.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	return s.checkout, s.err
}

func cleanResult() *inventory.CheckResult {
	return &inventory.CheckResult{HasErrors: false, Errors: []inventory.ItemError{}}
}

func problemResult(variantID string) *inventory.CheckResult {
	return &inventory.CheckResult{HasErrors: true, Errors: []inventory.ItemError{{
		VariantID:         variantID,
		ProductTitle:      "Alpha Tee",
		RequestedQuantity: 2,
		AvailableForSale:  true,
		Message:           "Only 1 item available, but 2 requested",
	}}}
}

func testDeps(checker *scriptedChecker, checkout *stubCheckoutCreator, clock *fakeClock) StoreDeps {
	return StoreDeps{
		Sessions: NewMemorySessionStore(),
		Checker:  checker,
		Checkout: checkout,
		Config: config.CartConfig{
			CheckDebounce: 10 * time.Millisecond,
			CheckInterval: 25 * time.Millisecond,
			FlashDuration: time.Second,
		},
		DefaultCurrency: "USD",
		Logger:          logger.New(logger.Options{ServiceName: "test"}),
		Clock:           clock.Now,
	}
}

func waitLoaded(t *testing.T, s *Store) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Snapshot().Loaded }, time.Second, time.Millisecond)
}

func variantRef(id, amount string) *VariantRef {
	return &VariantRef{ID: id, Price: types.Money{Amount: amount, CurrencyCode: "EUR"}}
}

func TestAddItem_MergesByCompositeKey(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	product := ProductRef{ID: "p1", Title: "Alpha Tee"}
	ctx := context.Background()

	first := s.AddItem(ctx, product, 0, variantRef("v1", "10.00"))
	second := s.AddItem(ctx, product, 0, variantRef("v1", "10.00"))
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, 2, second.Quantity)

	s.AddItem(ctx, product, 42, nil)
	s.AddItem(ctx, product, 43, nil)

	snapshot := s.Snapshot()
	require.Len(t, snapshot.Items, 3, "variant line plus one line per size")
	assert.Equal(t, "p1-v1", snapshot.Items[0].Key)
	assert.Equal(t, "p1-42", snapshot.Items[1].Key)
	assert.True(t, snapshot.Flashing, "successful add flashes the cart")
}

func TestUpdateQuantity_RemovesAtZero(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	ctx := context.Background()
	line := s.AddItem(ctx, ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	s.AddItem(ctx, ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))

	require.NoError(t, s.UpdateQuantity(ctx, line.Key, -1))
	assert.Equal(t, 1, s.Snapshot().Items[0].Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, line.Key, -1))
	assert.Empty(t, s.Snapshot().Items)

	err := s.UpdateQuantity(ctx, line.Key, 1)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeNotFound, typed.Code())
}

func TestRemoveItem(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	ctx := context.Background()
	line := s.AddItem(ctx, ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))

	require.NoError(t, s.RemoveItem(ctx, line.Key))
	assert.Empty(t, s.Snapshot().Items)

	err := s.RemoveItem(ctx, line.Key)
	require.NotNil(t, errors.As(err))
}

func TestTotal_PriceResolutionOrder(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	ctx := context.Background()

	// Variant price wins over product price.
	s.AddItem(ctx, ProductRef{
		ID:    "p1",
		Title: "Alpha Tee",
		Price: &types.Money{Amount: "99.00", CurrencyCode: "USD"},
	}, 0, variantRef("v1", "12.50"))

	// Product price when no variant.
	s.AddItem(ctx, ProductRef{
		ID:    "p2",
		Title: "Beta Hat",
		Price: &types.Money{Amount: "5.00", CurrencyCode: "USD"},
	}, 10, nil)

	// Legacy table: gray sk item is 40, other legacy items are 20.
	s.AddItem(ctx, ProductRef{ID: "sk-gray-01", Title: "Gray Legacy"}, 10, nil)
	s.AddItem(ctx, ProductRef{ID: "sk-blue-01", Title: "Blue Legacy"}, 10, nil)
	s.AddItem(ctx, ProductRef{ID: "p9", Title: "Plain Legacy"}, 10, nil)

	assert.InDelta(t, 12.50+5.00+40+20+20, s.Total(), 0.001)
	assert.Equal(t, "EUR 97.50", s.TotalFormatted(), "currency comes from first priced line")
}

func TestTotalFormatted_EmptyAndDefaultCurrency(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	assert.Equal(t, "$0.00", s.TotalFormatted())

	s.AddItem(context.Background(), ProductRef{ID: "p9", Title: "Plain Legacy"}, 10, nil)
	assert.Equal(t, "USD 20.00", s.TotalFormatted(), "no priced line falls back to configured currency")
}

func TestPersistence_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	checker := &scriptedChecker{}
	deps := testDeps(checker, &stubCheckoutCreator{}, clock)

	first := NewStore("sess-1", deps)
	waitLoaded(t, first)
	first.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	require.NoError(t, first.Close())

	second := NewStore("sess-1", deps)
	defer second.Close()
	waitLoaded(t, second)

	snapshot := second.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, "p1-v1", snapshot.Items[0].Key)
	assert.Equal(t, 1, snapshot.Items[0].Quantity)
}

func TestClear_ErasesPersistedCopy(t *testing.T) {
	clock := newFakeClock()
	deps := testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock)

	s := NewStore("sess-1", deps)
	waitLoaded(t, s)
	s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	s.Clear(context.Background())
	require.NoError(t, s.Close())

	_, found, err := deps.Sessions.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, found)

	rebuilt := NewStore("sess-1", deps)
	defer rebuilt.Close()
	waitLoaded(t, rebuilt)
	assert.Empty(t, rebuilt.Snapshot().Items)
}

func TestDebounce_CoalescesRapidMutations(t *testing.T) {
	clock := newFakeClock()
	checker := &scriptedChecker{}
	s := NewStore("sess-1", testDeps(checker, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	ctx := context.Background()
	product := ProductRef{ID: "p1", Title: "Alpha Tee"}
	for i := 0; i < 5; i++ {
		s.AddItem(ctx, product, 0, variantRef("v1", "10.00"))
	}

	require.Eventually(t, func() bool { return checker.callCount() >= 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, checker.callCount(), "rapid mutations share one debounced check")

	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && !snapshot.Checking
	}, time.Second, time.Millisecond)

	checker.mu.Lock()
	batch := checker.batches[0]
	checker.mu.Unlock()
	require.Len(t, batch, 1)
	assert.Equal(t, "v1", batch[0].VariantID)
	assert.Equal(t, 5, batch[0].Quantity)
}

func TestCheck_ProblemsFlashRedAndPollRecovers(t *testing.T) {
	clock := newFakeClock()
	checker := &scriptedChecker{respond: func(call int, _ []inventory.Item) (*inventory.CheckResult, error) {
		if call == 1 {
			return problemResult("v1"), nil
		}
		return cleanResult(), nil
	}}
	s := NewStore("sess-1", testDeps(checker, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	line := s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))

	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && snapshot.InventoryCheck.HasErrors
	}, time.Second, time.Millisecond)
	assert.True(t, s.Snapshot().FlashingRed)

	info := s.ItemStockInfo(line.Key)
	require.NotNil(t, info)
	assert.True(t, info.HasError)
	assert.Equal(t, 2, info.RequestedQuantity)

	// The poll keeps rechecking while errors persist and applies the
	// recovered result.
	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && !snapshot.InventoryCheck.HasErrors
	}, time.Second, time.Millisecond)
	assert.Nil(t, s.ItemStockInfo(line.Key))
}

func TestCheck_UpstreamFailureKeepsPreviousResult(t *testing.T) {
	clock := newFakeClock()
	checker := &scriptedChecker{respond: func(call int, _ []inventory.Item) (*inventory.CheckResult, error) {
		if call == 1 {
			return problemResult("v1"), nil
		}
		return nil, assert.AnError
	}}
	s := NewStore("sess-1", testDeps(checker, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))

	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && snapshot.InventoryCheck.HasErrors
	}, time.Second, time.Millisecond)

	// Later failing checks leave the recorded problems untouched.
	require.Eventually(t, func() bool { return checker.callCount() >= 2 }, time.Second, time.Millisecond)
	snapshot := s.Snapshot()
	require.NotNil(t, snapshot.InventoryCheck)
	assert.True(t, snapshot.InventoryCheck.HasErrors)
}

func TestCheck_StaleResponseDiscarded(t *testing.T) {
	clock := newFakeClock()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	checker := &scriptedChecker{respond: func(call int, _ []inventory.Item) (*inventory.CheckResult, error) {
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			return problemResult("stale"), nil
		}
		return cleanResult(), nil
	}}

	deps := testDeps(checker, &stubCheckoutCreator{}, clock)
	deps.Config.CheckInterval = time.Hour // keep the poll out of this test
	s := NewStore("sess-1", deps)
	defer func() {
		select {
		case <-releaseFirst:
		default:
			close(releaseFirst)
		}
		s.Close()
	}()
	waitLoaded(t, s)

	s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.CheckNow() // blocks inside the checker
	}()
	<-firstStarted

	s.CheckNow() // newer check completes first
	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && !snapshot.InventoryCheck.HasErrors
	}, time.Second, time.Millisecond)

	close(releaseFirst)
	wg.Wait()

	snapshot := s.Snapshot()
	require.NotNil(t, snapshot.InventoryCheck)
	assert.False(t, snapshot.InventoryCheck.HasErrors, "stale response must not overwrite the newer result")
}

func TestCreateCheckout(t *testing.T) {
	clock := newFakeClock()
	checkout := &stubCheckoutCreator{checkout: &commerce.Checkout{ID: "chk-1", WebURL: "https://shop.example.com/checkout"}}
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, checkout, clock))
	defer s.Close()
	waitLoaded(t, s)

	ctx := context.Background()

	// No variant-bearing lines: nil result, caller falls back locally.
	s.AddItem(ctx, ProductRef{ID: "p9", Title: "Plain Legacy"}, 10, nil)
	result, err := s.CreateCheckout(ctx)
	require.NoError(t, err)
	assert.Nil(t, result)

	s.AddItem(ctx, ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	s.AddItem(ctx, ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && !snapshot.Checking
	}, time.Second, time.Millisecond)

	result, err = s.CreateCheckout(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "https://shop.example.com/checkout", result.WebURL)
	require.Len(t, checkout.lines, 1, "size-only lines are filtered out")
	assert.Equal(t, commerce.CheckoutLine{VariantID: "v1", Quantity: 2}, checkout.lines[0])
}

func TestCreateCheckout_BlockedByStockProblems(t *testing.T) {
	clock := newFakeClock()
	checker := &scriptedChecker{respond: func(int, []inventory.Item) (*inventory.CheckResult, error) {
		return problemResult("v1"), nil
	}}
	s := NewStore("sess-1", testDeps(checker, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	require.Eventually(t, func() bool {
		snapshot := s.Snapshot()
		return snapshot.InventoryCheck != nil && snapshot.InventoryCheck.HasErrors
	}, time.Second, time.Millisecond)

	_, err := s.CreateCheckout(context.Background())
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeConflict, typed.Code())
}

func TestFlash_ExpiresWithClock(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	defer s.Close()
	waitLoaded(t, s)

	s.AddItem(context.Background(), ProductRef{ID: "p1", Title: "Alpha Tee"}, 0, variantRef("v1", "10.00"))
	assert.True(t, s.Snapshot().Flashing)

	clock.Advance(2 * time.Second)
	assert.False(t, s.Snapshot().Flashing)
}

func TestClose_Idempotent(t *testing.T) {
	clock := newFakeClock()
	s := NewStore("sess-1", testDeps(&scriptedChecker{}, &stubCheckoutCreator{}, clock))
	waitLoaded(t, s)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
