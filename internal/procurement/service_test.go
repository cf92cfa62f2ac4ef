package procurement

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medipos-erp/medipos/internal/shared"
)

type memSupplier struct {
	ID      int64
	Name    string
	Balance float64
}

type memoryStore struct {
	products       map[int64]*ProductRef
	batches        map[string]*NewBatch
	suppliers      map[int64]*memSupplier
	purchases      map[int64]*Purchase
	nextProductID  int64
	nextSupplierID int64
	nextPurchaseID int64
	nextLineID     int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:  map[int64]*ProductRef{},
		batches:   map[string]*NewBatch{},
		suppliers: map[int64]*memSupplier{},
		purchases: map[int64]*Purchase{},
	}
}

func (m *memoryStore) addProduct(name string, unitsPerStrip int, soldByStrip bool) int64 {
	m.nextProductID++
	m.products[m.nextProductID] = &ProductRef{
		ID: m.nextProductID, Name: name, UnitsPerStrip: unitsPerStrip, SoldByStrip: soldByStrip,
	}
	return m.nextProductID
}

func (m *memoryStore) addSupplier(name string, balance float64) int64 {
	m.nextSupplierID++
	m.suppliers[m.nextSupplierID] = &memSupplier{ID: m.nextSupplierID, Name: name, Balance: balance}
	return m.nextSupplierID
}

func (m *memoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error {
	return fn(ctx, m)
}

func (m *memoryStore) Get(ctx context.Context, id int64) (*Purchase, error) {
	return m.GetPurchase(ctx, id)
}

func (m *memoryStore) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	var out []Purchase
	for _, p := range m.purchases {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memoryStore) GetPurchase(ctx context.Context, id int64) (*Purchase, error) {
	p, ok := m.purchases[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.Lines = append([]PurchaseLine(nil), p.Lines...)
	return &cp, nil
}

func (m *memoryStore) InsertPurchase(ctx context.Context, p *Purchase) error {
	m.nextPurchaseID++
	p.ID = m.nextPurchaseID
	cp := *p
	m.purchases[p.ID] = &cp
	return nil
}

func (m *memoryStore) InsertLine(ctx context.Context, line *PurchaseLine) error {
	m.nextLineID++
	line.ID = m.nextLineID
	p, ok := m.purchases[line.PurchaseID]
	if !ok {
		return ErrNotFound
	}
	p.Lines = append(p.Lines, *line)
	return nil
}

func (m *memoryStore) DeletePurchase(ctx context.Context, id int64) error {
	if _, ok := m.purchases[id]; !ok {
		return ErrNotFound
	}
	delete(m.purchases, id)
	return nil
}

func (m *memoryStore) GetProduct(ctx context.Context, id int64) (*ProductRef, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryStore) CreateProduct(ctx context.Context, form NewProductForm) (*ProductRef, error) {
	id := m.addProduct(form.Name, form.UnitsPerStrip, form.SoldByStrip)
	cp := *m.products[id]
	return &cp, nil
}

func (m *memoryStore) CreateBatch(ctx context.Context, batch NewBatch) error {
	cp := batch
	m.batches[batch.ID] = &cp
	return nil
}

func (m *memoryStore) GetSupplier(ctx context.Context, id int64) (*SupplierRef, error) {
	s, ok := m.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &SupplierRef{ID: s.ID, Name: s.Name}, nil
}

func (m *memoryStore) FindSupplierByName(ctx context.Context, name string) (*SupplierRef, error) {
	for _, s := range m.suppliers {
		if strings.EqualFold(s.Name, name) {
			return &SupplierRef{ID: s.ID, Name: s.Name}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) CreateSupplier(ctx context.Context, name string) (*SupplierRef, error) {
	id := m.addSupplier(name, 0)
	return &SupplierRef{ID: id, Name: name}, nil
}

func (m *memoryStore) AdjustSupplierBalance(ctx context.Context, id int64, delta float64) error {
	s, ok := m.suppliers[id]
	if !ok {
		return ErrNotFound
	}
	s.Balance += delta
	return nil
}

func (m *memoryStore) totalStock() float64 {
	var sum float64
	for _, b := range m.batches {
		sum += b.StockQty
	}
	return sum
}

func TestPurchaseCreatesBatchWithStripConversion(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil)

	purchase, _, err := svc.Create(context.Background(), PurchaseForm{
		SupplierName: "Mehta Agencies",
		InvoiceDate:  "2025-03-01",
		PaymentMode:  ModeCash,
		Lines: []PurchaseLineForm{{
			NewProduct: &NewProductForm{Name: "Azithro 250", UnitsPerStrip: 10, SoldByStrip: true},
			BatchNo:    "AZ101",
			Expiry:     "2026-08",
			Qty:        10,
			MRP:        45,
		}},
	})
	require.NoError(t, err)
	require.Len(t, purchase.Lines, 1)

	// 10 strips of 10 units each.
	batch := store.batches[purchase.Lines[0].BatchID]
	require.NotNil(t, batch)
	require.InDelta(t, 100, batch.StockQty, 1e-9)
	require.Equal(t, 10, purchase.Lines[0].UnitsPerStrip)
}

func TestPurchaseWithoutStripSellingKeepsUnitQty(t *testing.T) {
	store := newMemoryStore()
	productID := store.addProduct("Cough Syrup 100ml", 1, false)
	svc := NewService(store, nil)

	purchase, _, err := svc.Create(context.Background(), PurchaseForm{
		SupplierName: "Mehta Agencies",
		InvoiceDate:  "2025-03-01",
		PaymentMode:  ModeCash,
		Lines: []PurchaseLineForm{{
			ProductID: productID,
			BatchNo:   "CS55",
			Qty:       24,
		}},
	})
	require.NoError(t, err)
	batch := store.batches[purchase.Lines[0].BatchID]
	require.InDelta(t, 24, batch.StockQty, 1e-9)
}

func TestCreditPurchaseAddsToSupplierBalance(t *testing.T) {
	store := newMemoryStore()
	supplierID := store.addSupplier("Mehta Agencies", 2000)
	productID := store.addProduct("Cough Syrup 100ml", 1, false)
	svc := NewService(store, nil)

	purchase, outcomes, err := svc.Create(context.Background(), PurchaseForm{
		SupplierID:  &supplierID,
		InvoiceNo:   "INV-77",
		InvoiceDate: "2025-03-01",
		PaymentMode: ModeCredit,
		Lines: []PurchaseLineForm{{
			ProductID:     productID,
			BatchNo:       "CS56",
			Qty:           10,
			PurchasePrice: 50,
		}},
	})
	require.NoError(t, err)
	require.InDelta(t, 500, purchase.Total, 1e-9)
	require.InDelta(t, 2500, store.suppliers[supplierID].Balance, 1e-9)
	require.False(t, shared.AnySkipped(outcomes))
}

func TestDeleteKeepsStockAndReversesBalance(t *testing.T) {
	store := newMemoryStore()
	supplierID := store.addSupplier("Mehta Agencies", 0)
	svc := NewService(store, nil)

	purchase, _, err := svc.Create(context.Background(), PurchaseForm{
		SupplierID:  &supplierID,
		InvoiceDate: "2025-03-01",
		PaymentMode: ModeCredit,
		Lines: []PurchaseLineForm{{
			NewProduct:    &NewProductForm{Name: "Azithro 250", UnitsPerStrip: 10, SoldByStrip: true},
			BatchNo:       "AZ102",
			Qty:           10,
			PurchasePrice: 30,
		}},
	})
	require.NoError(t, err)
	require.InDelta(t, 100, store.totalStock(), 1e-9)
	require.InDelta(t, 300, store.suppliers[supplierID].Balance, 1e-9)

	outcomes, err := svc.Delete(context.Background(), purchase.ID)
	require.NoError(t, err)
	// Stock stays, balance effect is reversed, and the skipped reversion is
	// reported.
	require.InDelta(t, 100, store.totalStock(), 1e-9)
	require.InDelta(t, 0, store.suppliers[supplierID].Balance, 1e-9)
	require.True(t, shared.AnySkipped(outcomes))
	require.Empty(t, store.purchases)
}

func TestCreateRejectsLineWithoutProduct(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)

	_, _, err := svc.Create(context.Background(), PurchaseForm{
		SupplierName: "Mehta Agencies",
		InvoiceDate:  "2025-03-01",
		PaymentMode:  ModeCash,
		Lines:        []PurchaseLineForm{{BatchNo: "X1", Qty: 5}},
	})
	require.Error(t, err)
}
