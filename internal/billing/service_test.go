package billing

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/internal/shared"
)

type memCustomer struct {
	ID      int64
	Name    string
	Balance float64
}

// memoryStore implements RepositoryPort and TxPort. InTx snapshots the state
// and restores it on error, mirroring a rolled back transaction.
type memoryStore struct {
	batches        map[string]*BatchStock
	customers      map[int64]*memCustomer
	bills          map[int64]*Bill
	nextBillID     int64
	nextCustomerID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		batches:   map[string]*BatchStock{},
		customers: map[int64]*memCustomer{},
		bills:     map[int64]*Bill{},
	}
}

func (m *memoryStore) addBatch(stock float64) string {
	id := uuid.NewString()
	m.batches[id] = &BatchStock{ID: id, ProductID: 1, BatchNo: "BN-" + id[:4], StockQty: stock, Version: 1}
	return id
}

func (m *memoryStore) addCustomer(name string, balance float64) int64 {
	m.nextCustomerID++
	m.customers[m.nextCustomerID] = &memCustomer{ID: m.nextCustomerID, Name: name, Balance: balance}
	return m.nextCustomerID
}

func (m *memoryStore) snapshot() *memoryStore {
	cp := newMemoryStore()
	cp.nextBillID = m.nextBillID
	cp.nextCustomerID = m.nextCustomerID
	for k, v := range m.batches {
		b := *v
		cp.batches[k] = &b
	}
	for k, v := range m.customers {
		c := *v
		cp.customers[k] = &c
	}
	for k, v := range m.bills {
		b := *v
		b.Lines = append([]BillLine(nil), v.Lines...)
		cp.bills[k] = &b
	}
	return cp
}

func (m *memoryStore) restore(snap *memoryStore) {
	m.batches = snap.batches
	m.customers = snap.customers
	m.bills = snap.bills
	m.nextBillID = snap.nextBillID
	m.nextCustomerID = snap.nextCustomerID
}

func (m *memoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error {
	snap := m.snapshot()
	if err := fn(ctx, m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id int64) (*Bill, error) {
	return m.GetBill(ctx, id)
}

func (m *memoryStore) List(ctx context.Context, filter ListFilter) ([]Bill, int, error) {
	var out []Bill
	for _, b := range m.bills {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *memoryStore) NextBillNumber(ctx context.Context, prefix string) (string, error) {
	var max int64
	for _, b := range m.bills {
		digits := strings.TrimLeft(b.Number, prefix)
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return prefix + strings.Repeat("0", 5-len(strconv.FormatInt(max+1, 10))) + strconv.FormatInt(max+1, 10), nil
}

func (m *memoryStore) GetBill(ctx context.Context, id int64) (*Bill, error) {
	b, ok := m.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	cp.Lines = append([]BillLine(nil), b.Lines...)
	return &cp, nil
}

func (m *memoryStore) InsertBill(ctx context.Context, bill *Bill) error {
	m.nextBillID++
	bill.ID = m.nextBillID
	cp := *bill
	m.bills[bill.ID] = &cp
	return nil
}

func (m *memoryStore) UpdateBill(ctx context.Context, bill *Bill, expectedVersion int64) error {
	existing, ok := m.bills[bill.ID]
	if !ok || existing.Version != expectedVersion {
		return db.ErrVersionConflict
	}
	cp := *bill
	m.bills[bill.ID] = &cp
	return nil
}

func (m *memoryStore) DeleteBill(ctx context.Context, id int64) error {
	if _, ok := m.bills[id]; !ok {
		return ErrNotFound
	}
	delete(m.bills, id)
	return nil
}

func (m *memoryStore) ReplaceLines(ctx context.Context, billID int64, lines []BillLine) error {
	b, ok := m.bills[billID]
	if !ok {
		return ErrNotFound
	}
	b.Lines = append([]BillLine(nil), lines...)
	return nil
}

func (m *memoryStore) GetBatch(ctx context.Context, batchID string) (*BatchStock, error) {
	b, ok := m.batches[batchID]
	if !ok {
		return nil, ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryStore) AdjustBatchStock(ctx context.Context, batchID string, delta float64, expectedVersion int64) error {
	b, ok := m.batches[batchID]
	if !ok || b.Version != expectedVersion {
		return db.ErrVersionConflict
	}
	b.StockQty += delta
	b.Version++
	return nil
}

func (m *memoryStore) GetCustomer(ctx context.Context, id int64) (*CustomerRef, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &CustomerRef{ID: c.ID, Name: c.Name}, nil
}

func (m *memoryStore) FindCustomerByName(ctx context.Context, name string) (*CustomerRef, error) {
	for _, c := range m.customers {
		if strings.EqualFold(c.Name, name) {
			return &CustomerRef{ID: c.ID, Name: c.Name}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) CreateCustomer(ctx context.Context, name string) (*CustomerRef, error) {
	id := m.addCustomer(name, 0)
	return &CustomerRef{ID: id, Name: name}, nil
}

func (m *memoryStore) AdjustCustomerBalance(ctx context.Context, id int64, delta float64) error {
	c, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	c.Balance += delta
	return nil
}

func lineForm(batchID string, qty, rate float64) BillLineForm {
	return BillLineForm{ProductID: 1, BatchID: batchID, ProductName: "Paracetamol 500", Qty: qty, Rate: rate}
}

func TestCreateBillDecrementsStock(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
	})
	require.NoError(t, err)
	require.Equal(t, "B00001", bill.Number)
	require.InDelta(t, 50, bill.GrandTotal, 1e-9)
	require.InDelta(t, 15, store.batches[batchID].StockQty, 1e-9)
}

func TestCreateCreditBillAddsToCustomerBalance(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	customerID := store.addCustomer("Sharma Medical", 1000)
	svc := NewService(store, nil, "B")

	bill, outcomes, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		CustomerID:  &customerID,
		PaymentMode: ModeCredit,
		Lines:       []BillLineForm{lineForm(batchID, 5, 100)},
	})
	require.NoError(t, err)
	require.InDelta(t, 500, bill.GrandTotal, 1e-9)
	require.InDelta(t, 1500, store.customers[customerID].Balance, 1e-9)
	require.False(t, shared.AnySkipped(outcomes))
}

func TestDeleteBillRestoresStockAndBalance(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	customerID := store.addCustomer("Sharma Medical", 1000)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		CustomerID:  &customerID,
		PaymentMode: ModeCredit,
		Lines:       []BillLineForm{lineForm(batchID, 5, 100)},
	})
	require.NoError(t, err)
	require.InDelta(t, 15, store.batches[batchID].StockQty, 1e-9)

	_, err = svc.Delete(context.Background(), bill.ID)
	require.NoError(t, err)
	require.InDelta(t, 20, store.batches[batchID].StockQty, 1e-9)
	require.InDelta(t, 1000, store.customers[customerID].Balance, 1e-9)
	require.Empty(t, store.bills)
}

func TestEditRoundTripRestoresStock(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
	})
	require.NoError(t, err)
	require.InDelta(t, 15, store.batches[batchID].StockQty, 1e-9)

	// Bump the quantity, then edit back to the original.
	edited, _, err := svc.Update(context.Background(), bill.ID, BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 8, 10)},
		Version:     bill.Version,
	})
	require.NoError(t, err)
	require.InDelta(t, 12, store.batches[batchID].StockQty, 1e-9)

	_, _, err = svc.Update(context.Background(), bill.ID, BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
		Version:     edited.Version,
	})
	require.NoError(t, err)
	require.InDelta(t, 15, store.batches[batchID].StockQty, 1e-9)
}

func TestEditMovesCreditBetweenCustomers(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(50)
	first := store.addCustomer("Sharma Medical", 0)
	second := store.addCustomer("Verma Clinic", 0)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		CustomerID:  &first,
		PaymentMode: ModeCredit,
		Lines:       []BillLineForm{lineForm(batchID, 5, 100)},
	})
	require.NoError(t, err)
	require.InDelta(t, 500, store.customers[first].Balance, 1e-9)

	_, _, err = svc.Update(context.Background(), bill.ID, BillForm{
		BillDate:    "2025-03-01",
		CustomerID:  &second,
		PaymentMode: ModeCredit,
		Lines:       []BillLineForm{lineForm(batchID, 5, 100)},
		Version:     bill.Version,
	})
	require.NoError(t, err)
	require.InDelta(t, 0, store.customers[first].Balance, 1e-9)
	require.InDelta(t, 500, store.customers[second].Balance, 1e-9)
}

func TestCreateRejectsOversell(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(3)
	svc := NewService(store, nil, "B")

	_, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.InDelta(t, 3, store.batches[batchID].StockQty, 1e-9)
}

func TestStaleVersionRejected(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
	})
	require.NoError(t, err)

	_, _, err = svc.Update(context.Background(), bill.ID, BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 6, 10)},
		Version:     bill.Version + 7,
	})
	require.ErrorIs(t, err, db.ErrVersionConflict)
	require.InDelta(t, 15, store.batches[batchID].StockQty, 1e-9)
}

func TestDeleteReportsSkippedRestoreForVanishedBatch(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:    "2025-03-01",
		PaymentMode: ModeCash,
		Lines:       []BillLineForm{lineForm(batchID, 5, 10)},
	})
	require.NoError(t, err)

	delete(store.batches, batchID)

	outcomes, err := svc.Delete(context.Background(), bill.ID)
	require.NoError(t, err)
	require.True(t, shared.AnySkipped(outcomes))
	require.Empty(t, store.bills)
}

func TestCreditBillCreatesCustomerByName(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(20)
	svc := NewService(store, nil, "B")

	bill, _, err := svc.Create(context.Background(), BillForm{
		BillDate:     "2025-03-01",
		CustomerName: "Walk In Trader",
		PaymentMode:  ModeCredit,
		Lines:        []BillLineForm{lineForm(batchID, 2, 50)},
	})
	require.NoError(t, err)
	require.NotNil(t, bill.CustomerID)
	require.InDelta(t, 100, store.customers[*bill.CustomerID].Balance, 1e-9)
}

func TestBillNumbersAreSequential(t *testing.T) {
	store := newMemoryStore()
	batchID := store.addBatch(100)
	svc := NewService(store, nil, "B")

	for i, want := range []string{"B00001", "B00002", "B00003"} {
		bill, _, err := svc.Create(context.Background(), BillForm{
			BillDate:    "2025-03-01",
			PaymentMode: ModeCash,
			Lines:       []BillLineForm{lineForm(batchID, 1, 10)},
		})
		require.NoError(t, err, "bill %d", i)
		require.Equal(t, want, bill.Number)
	}
}
