package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type partyKey struct {
	party PartyType
	id    int64
}

type memoryStore struct {
	vouchers  map[int64]*Voucher
	balances  map[partyKey]float64
	nextID    int64
	nextSeq   int64
	existence map[partyKey]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		vouchers:  map[int64]*Voucher{},
		balances:  map[partyKey]float64{},
		existence: map[partyKey]bool{},
	}
}

func (m *memoryStore) addParty(party PartyType, id int64, balance float64) {
	key := partyKey{party, id}
	m.existence[key] = true
	m.balances[key] = balance
}

func (m *memoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx TxPort) error) error {
	return fn(ctx, m)
}

func (m *memoryStore) Get(ctx context.Context, id int64) (*Voucher, error) {
	return m.GetVoucher(ctx, id)
}

func (m *memoryStore) List(ctx context.Context, filter ListFilter) ([]Voucher, int, error) {
	var out []Voucher
	for _, v := range m.vouchers {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (m *memoryStore) NextVoucherNumber(ctx context.Context) (string, error) {
	m.nextSeq++
	return fmt.Sprintf("PV-%06d", m.nextSeq), nil
}

func (m *memoryStore) GetVoucher(ctx context.Context, id int64) (*Voucher, error) {
	v, ok := m.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memoryStore) InsertVoucher(ctx context.Context, v *Voucher) error {
	m.nextID++
	v.ID = m.nextID
	cp := *v
	m.vouchers[v.ID] = &cp
	return nil
}

func (m *memoryStore) UpdateVoucher(ctx context.Context, v *Voucher) error {
	if _, ok := m.vouchers[v.ID]; !ok {
		return ErrNotFound
	}
	cp := *v
	m.vouchers[v.ID] = &cp
	return nil
}

func (m *memoryStore) DeleteVoucher(ctx context.Context, id int64) error {
	if _, ok := m.vouchers[id]; !ok {
		return ErrNotFound
	}
	delete(m.vouchers, id)
	return nil
}

func (m *memoryStore) PartyExists(ctx context.Context, party PartyType, id int64) (bool, error) {
	return m.existence[partyKey{party, id}], nil
}

func (m *memoryStore) AdjustPartyBalance(ctx context.Context, party PartyType, id int64, delta float64) error {
	key := partyKey{party, id}
	if !m.existence[key] {
		return ErrPartyNotFound
	}
	m.balances[key] += delta
	return nil
}

func TestCreateVoucherSettlesBalance(t *testing.T) {
	store := newMemoryStore()
	store.addParty(PartyCustomer, 1, 1500)
	svc := NewService(store, nil)

	voucher, err := svc.Create(context.Background(), VoucherForm{
		PartyType:   PartyCustomer,
		PartyID:     1,
		VoucherDate: "2025-03-02",
		Amount:      300,
	})
	require.NoError(t, err)
	require.Equal(t, "PV-000001", voucher.Number)
	require.Equal(t, "CASH", voucher.Method)
	require.InDelta(t, 1200, store.balances[partyKey{PartyCustomer, 1}], 1e-9)
}

func TestVoucherNumbersAreSequential(t *testing.T) {
	store := newMemoryStore()
	store.addParty(PartySupplier, 1, 0)
	svc := NewService(store, nil)

	for _, want := range []string{"PV-000001", "PV-000002"} {
		voucher, err := svc.Create(context.Background(), VoucherForm{
			PartyType:   PartySupplier,
			PartyID:     1,
			VoucherDate: "2025-03-02",
			Amount:      100,
		})
		require.NoError(t, err)
		require.Equal(t, want, voucher.Number)
	}
}

func TestUpdateMovesSettlementBetweenParties(t *testing.T) {
	store := newMemoryStore()
	store.addParty(PartyCustomer, 1, 1000)
	store.addParty(PartyCustomer, 2, 1000)
	svc := NewService(store, nil)

	voucher, err := svc.Create(context.Background(), VoucherForm{
		PartyType:   PartyCustomer,
		PartyID:     1,
		VoucherDate: "2025-03-02",
		Amount:      300,
	})
	require.NoError(t, err)
	require.InDelta(t, 700, store.balances[partyKey{PartyCustomer, 1}], 1e-9)

	updated, err := svc.Update(context.Background(), voucher.ID, VoucherForm{
		PartyType:   PartyCustomer,
		PartyID:     2,
		VoucherDate: "2025-03-02",
		Amount:      250,
	})
	require.NoError(t, err)
	require.Equal(t, voucher.Number, updated.Number)
	require.InDelta(t, 1000, store.balances[partyKey{PartyCustomer, 1}], 1e-9)
	require.InDelta(t, 750, store.balances[partyKey{PartyCustomer, 2}], 1e-9)
}

func TestDeleteRestoresBalance(t *testing.T) {
	store := newMemoryStore()
	store.addParty(PartySupplier, 5, 2000)
	svc := NewService(store, nil)

	voucher, err := svc.Create(context.Background(), VoucherForm{
		PartyType:   PartySupplier,
		PartyID:     5,
		VoucherDate: "2025-03-02",
		Amount:      500,
		Method:      "CHEQUE",
	})
	require.NoError(t, err)
	require.InDelta(t, 1500, store.balances[partyKey{PartySupplier, 5}], 1e-9)

	require.NoError(t, svc.Delete(context.Background(), voucher.ID))
	require.InDelta(t, 2000, store.balances[partyKey{PartySupplier, 5}], 1e-9)
	require.Empty(t, store.vouchers)
}

func TestCreateRejectsUnknownParty(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)

	_, err := svc.Create(context.Background(), VoucherForm{
		PartyType:   PartyCustomer,
		PartyID:     99,
		VoucherDate: "2025-03-02",
		Amount:      100,
	})
	require.ErrorIs(t, err, ErrPartyNotFound)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	store := newMemoryStore()
	store.addParty(PartyCustomer, 1, 0)
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), VoucherForm{
		PartyType:   PartyCustomer,
		PartyID:     1,
		VoucherDate: "2025-03-02",
		Amount:      0,
	})
	require.Error(t, err)
}
