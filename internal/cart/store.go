package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dataranlabs/storefront-backend/internal/inventory"
	"github.com/dataranlabs/storefront-backend/pkg/commerce"
	"github.com/dataranlabs/storefront-backend/pkg/config"
	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
	"github.com/dataranlabs/storefront-backend/pkg/types"
)

// InventoryChecker runs a batched stock check for cart lines.
type InventoryChecker interface {
	CheckCart(ctx context.Context, items []inventory.Item) (*inventory.CheckResult, bool, error)
}

// CheckoutCreator opens a platform checkout for variant-bearing lines.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, lines []commerce.CheckoutLine) (*commerce.Checkout, error)
}

// StoreDeps carries everything a Store needs. Clock is optional and
// defaults to time.Now.
type StoreDeps struct {
	Sessions        SessionStore
	Checker         InventoryChecker
	Checkout        CheckoutCreator
	Config          config.CartConfig
	DefaultCurrency string
	Logger          *logger.Logger
	Clock           func() time.Time
}

// StockInfo is the per-line availability detail derived from the last
// inventory check.
type StockInfo struct {
	HasError          bool   `json:"hasError"`
	AvailableQuantity *int   `json:"availableQuantity"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableForSale  bool   `json:"availableForSale"`
	Message           string `json:"message,omitempty"`
}

// Snapshot is a consistent read of the whole cart state.
type Snapshot struct {
	Items          []LineItem             `json:"items"`
	Loaded         bool                   `json:"loaded"`
	Total          float64                `json:"total"`
	TotalFormatted string                 `json:"totalFormatted"`
	Flashing       bool                   `json:"flashing"`
	FlashingRed    bool                   `json:"flashingRed"`
	Checking       bool                   `json:"checkingInventory"`
	InventoryCheck *inventory.CheckResult `json:"inventoryCheck,omitempty"`
}

// Store is one session's cart. Mutations persist to the session store,
// arm a debounced inventory check, and flash the cart signal. A
// background poll rechecks stock while problems persist. All timers are
// owned by the store and torn down by Close.
type Store struct {
	sessionID string
	deps      StoreDeps
	now       func() time.Time

	mu            sync.Mutex
	items         []LineItem
	loaded        bool
	flashUntil    time.Time
	flashRedUntil time.Time
	lastCheck     *inventory.CheckResult
	checking      int
	seq           uint64
	applied       uint64
	debounce      *time.Timer
	closed        bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewStore builds a cart store for the session and begins rehydrating
// persisted state in the background. The store is usable immediately; a
// snapshot taken before hydration finishes reports Loaded=false.
func NewStore(sessionID string, deps StoreDeps) *Store {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s := &Store{
		sessionID: sessionID,
		deps:      deps,
		now:       deps.Clock,
		done:      make(chan struct{}),
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.hydrate()
	}()
	go func() {
		defer s.wg.Done()
		s.poll()
	}()
	return s
}

// hydrate restores the persisted line items. A missing or corrupt blob
// yields an empty cart.
func (s *Store) hydrate() {
	ctx := context.Background()
	blob, found, err := s.deps.Sessions.Get(ctx, s.sessionID)
	if err != nil {
		s.deps.Logger.Error(ctx, "load persisted cart", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if found && len(s.items) == 0 {
		var restored []LineItem
		if err := json.Unmarshal(blob, &restored); err != nil {
			s.deps.Logger.Error(ctx, "decode persisted cart", err)
		} else {
			s.items = restored
		}
	}
	s.loaded = true
	if len(s.items) > 0 {
		s.scheduleCheckLocked()
	}
}

// poll rechecks stock on the configured interval while the cart is
// non-empty and the last result is absent or has errors.
func (s *Store) poll() {
	ticker := time.NewTicker(s.deps.Config.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			due := !s.closed && len(s.items) > 0 && (s.lastCheck == nil || s.lastCheck.HasErrors)
			s.mu.Unlock()
			if due {
				s.runCheck()
			}
		}
	}
}

// AddItem merges into an existing line with the same composite key or
// appends a new single-quantity line, and triggers the success flash.
func (s *Store) AddItem(ctx context.Context, product ProductRef, size int, variant *VariantRef) LineItem {
	key := lineKey(product, variant, size)

	s.mu.Lock()
	var line LineItem
	merged := false
	for i := range s.items {
		if s.items[i].Key == key {
			s.items[i].Quantity++
			line = s.items[i]
			merged = true
			break
		}
	}
	if !merged {
		line = LineItem{Key: key, Product: product, Variant: variant, Size: size, Quantity: 1}
		s.items = append(s.items, line)
	}
	s.flashUntil = s.now().Add(s.deps.Config.FlashDuration)
	s.persistLocked(ctx)
	s.scheduleCheckLocked()
	s.mu.Unlock()

	return line
}

// UpdateQuantity applies a signed delta to the line. A resulting
// quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, key string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key != key {
			continue
		}
		s.items[i].Quantity += delta
		if s.items[i].Quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}
		s.persistLocked(ctx)
		s.scheduleCheckLocked()
		return nil
	}
	return errors.New(errors.CodeNotFound, "cart item not found")
}

// RemoveItem deletes the line outright.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key != key {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.persistLocked(ctx)
		s.scheduleCheckLocked()
		return nil
	}
	return errors.New(errors.CodeNotFound, "cart item not found")
}

// Clear empties the cart and erases the persisted copy.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.lastCheck = nil
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.mu.Unlock()

	if err := s.deps.Sessions.Remove(ctx, s.sessionID); err != nil {
		s.deps.Logger.Error(ctx, "clear persisted cart", err)
	}
}

// Total sums unit price times quantity across all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Store) totalLocked() float64 {
	var total float64
	for _, line := range s.items {
		total += line.UnitPrice() * float64(line.Quantity)
	}
	return total
}

// TotalFormatted renders the total with the cart's currency: the first
// priced line's code, else the configured default. An empty cart is
// always "$0.00".
func (s *Store) TotalFormatted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFormattedLocked()
}

func (s *Store) totalFormattedLocked() string {
	if len(s.items) == 0 {
		return "$0.00"
	}
	currency := s.deps.DefaultCurrency
	for _, line := range s.items {
		if code := line.Currency(); code != "" {
			currency = code
			break
		}
	}
	return types.FormatMoney(currency, s.totalLocked())
}

// Snapshot returns a consistent view of the cart for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, len(s.items))
	copy(items, s.items)
	now := s.now()
	return Snapshot{
		Items:          items,
		Loaded:         s.loaded,
		Total:          s.totalLocked(),
		TotalFormatted: s.totalFormattedLocked(),
		Flashing:       now.Before(s.flashUntil),
		FlashingRed:    now.Before(s.flashRedUntil),
		Checking:       s.checking > 0,
		InventoryCheck: s.lastCheck,
	}
}

// ItemStockInfo reports the last check's verdict for one line. Lines
// without a variant, or without a recorded problem, return nil.
func (s *Store) ItemStockInfo(key string) *StockInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCheck == nil {
		return nil
	}
	var variantID string
	for _, line := range s.items {
		if line.Key == key && line.Variant != nil {
			variantID = line.Variant.ID
			break
		}
	}
	if variantID == "" {
		return nil
	}
	for _, itemErr := range s.lastCheck.Errors {
		if itemErr.VariantID == variantID {
			return &StockInfo{
				HasError:          true,
				AvailableQuantity: itemErr.AvailableQuantity,
				RequestedQuantity: itemErr.RequestedQuantity,
				AvailableForSale:  itemErr.AvailableForSale,
				Message:           itemErr.Message,
			}
		}
	}
	return nil
}

// CreateCheckout opens a platform checkout for the variant-bearing
// lines. A cart with no such lines returns (nil, nil): the caller falls
// back to its local review flow. Checkout is refused while the last
// check reported problems or a check is still in flight.
func (s *Store) CreateCheckout(ctx context.Context) (*commerce.Checkout, error) {
	s.mu.Lock()
	if s.checking > 0 {
		s.mu.Unlock()
		return nil, errors.New(errors.CodeConflict, "inventory check in progress")
	}
	if s.lastCheck != nil && s.lastCheck.HasErrors {
		s.mu.Unlock()
		return nil, errors.New(errors.CodeConflict, "cart has unresolved stock problems")
	}
	lines := make([]commerce.CheckoutLine, 0, len(s.items))
	for _, line := range s.items {
		if line.Variant == nil {
			continue
		}
		lines = append(lines, commerce.CheckoutLine{VariantID: line.Variant.ID, Quantity: line.Quantity})
	}
	s.mu.Unlock()

	if len(lines) == 0 {
		return nil, nil
	}
	return s.deps.Checkout.CreateCheckout(ctx, lines)
}

// CheckNow runs an inventory check immediately, bypassing the debounce.
func (s *Store) CheckNow() {
	s.runCheck()
}

// Close stops the debounce timer and the poll loop. Safe to call more
// than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.debounce != nil {
			s.debounce.Stop()
		}
		s.mu.Unlock()
		close(s.done)
		s.wg.Wait()
	})
	return nil
}

// scheduleCheckLocked arms (or re-arms) the debounced check. Callers
// hold s.mu.
func (s *Store) scheduleCheckLocked() {
	if s.closed {
		return
	}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.deps.Config.CheckDebounce, s.runCheck)
}

// runCheck snapshots the variant-bearing lines, queries stock, and
// applies the result unless a newer check has already landed. Upstream
// failure keeps the previous result.
func (s *Store) runCheck() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	s.checking++
	batch := make([]inventory.Item, 0, len(s.items))
	for _, line := range s.items {
		if line.Variant == nil {
			continue
		}
		batch = append(batch, inventory.Item{
			VariantID:    line.Variant.ID,
			Quantity:     line.Quantity,
			ProductTitle: line.Product.Title,
		})
	}
	s.mu.Unlock()

	ctx := context.Background()
	var result *inventory.CheckResult
	if len(batch) == 0 {
		result = &inventory.CheckResult{HasErrors: false, Errors: []inventory.ItemError{}}
	} else {
		checked, _, err := s.deps.Checker.CheckCart(ctx, batch)
		if err != nil {
			s.deps.Logger.Error(ctx, "cart inventory check failed", err)
		} else {
			result = checked
		}
	}

	s.mu.Lock()
	s.checking--
	if result != nil && seq > s.applied && !s.closed {
		s.applied = seq
		s.lastCheck = result
		if result.HasErrors {
			s.flashRedUntil = s.now().Add(s.deps.Config.FlashDuration)
		}
	}
	s.mu.Unlock()
}

// persistLocked serializes the lines to the session store. Persistence
// only starts once hydration has finished, so a slow load cannot be
// clobbered by an empty write. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if !s.loaded {
		return
	}
	blob, err := json.Marshal(s.items)
	if err != nil {
		s.deps.Logger.Error(ctx, "encode cart for persistence", err)
		return
	}
	if err := s.deps.Sessions.Set(ctx, s.sessionID, blob); err != nil {
		s.deps.Logger.Error(ctx, "persist cart", err)
	}
}
