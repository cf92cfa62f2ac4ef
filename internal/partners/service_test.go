package partners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medipos-erp/medipos/internal/shared"
)

type memoryPartnerRepo struct {
	parties map[int64]*Party
	nextID  int64
}

func newMemoryPartnerRepo() *memoryPartnerRepo {
	return &memoryPartnerRepo{parties: map[int64]*Party{}}
}

func (r *memoryPartnerRepo) Get(ctx context.Context, kind Kind, id int64) (*Party, error) {
	p, ok := r.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryPartnerRepo) List(ctx context.Context, kind Kind, search string, page shared.Pagination) ([]Party, int, error) {
	var out []Party
	for _, p := range r.parties {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryPartnerRepo) Create(ctx context.Context, kind Kind, form PartyForm) (*Party, error) {
	r.nextID++
	p := &Party{
		ID:             r.nextID,
		Name:           form.Name,
		Phone:          form.Phone,
		OpeningBalance: form.OpeningBalance,
		Balance:        form.OpeningBalance,
		Version:        1,
	}
	r.parties[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *memoryPartnerRepo) Update(ctx context.Context, kind Kind, id int64, form PartyForm, expectedVersion int64) (*Party, error) {
	p, ok := r.parties[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Name = form.Name
	p.Phone = form.Phone
	p.Balance += form.OpeningBalance - p.OpeningBalance
	p.OpeningBalance = form.OpeningBalance
	p.Version++
	cp := *p
	return &cp, nil
}

func (r *memoryPartnerRepo) Delete(ctx context.Context, kind Kind, id int64) error {
	if _, ok := r.parties[id]; !ok {
		return ErrNotFound
	}
	delete(r.parties, id)
	return nil
}

func TestCreateStartsBalanceAtOpening(t *testing.T) {
	svc := NewService(newMemoryPartnerRepo())

	p, err := svc.Create(context.Background(), KindCustomer, PartyForm{Name: "Verma Clinic", OpeningBalance: 1000})
	require.NoError(t, err)
	require.InDelta(t, 1000, p.Balance, 1e-9)
}

func TestOpeningBalanceEditAppliesDelta(t *testing.T) {
	repo := newMemoryPartnerRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), KindCustomer, PartyForm{Name: "Verma Clinic", OpeningBalance: 1000})
	require.NoError(t, err)

	// Simulate activity after the opening balance was set: a 500 credit sale.
	repo.parties[p.ID].Balance += 500

	updated, err := svc.Update(context.Background(), KindCustomer, p.ID, PartyForm{Name: "Verma Clinic", OpeningBalance: 1200})
	require.NoError(t, err)
	// Delta of +200 lands on top of the accumulated 1500, not instead of it.
	require.InDelta(t, 1700, updated.Balance, 1e-9)
	require.InDelta(t, 1200, updated.OpeningBalance, 1e-9)
}

func TestUpdateMissingParty(t *testing.T) {
	svc := NewService(newMemoryPartnerRepo())

	_, err := svc.Update(context.Background(), KindSupplier, 42, PartyForm{Name: "Mehta Agencies"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryPartnerRepo())

	_, err := svc.Create(context.Background(), KindSupplier, PartyForm{Name: "   "})
	require.Error(t, err)
}
