package gstrates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medipos-erp/medipos/internal/masterdata/shared"
)

type memoryGstRepo struct {
	rates   map[int64]*GstRate
	refs    map[int64]int
	nextID  int64
	deleted []int64
}

func newMemoryGstRepo() *memoryGstRepo {
	return &memoryGstRepo{rates: map[int64]*GstRate{}, refs: map[int64]int{}}
}

func (r *memoryGstRepo) List(ctx context.Context) ([]GstRate, error) {
	var out []GstRate
	for _, g := range r.rates {
		out = append(out, *g)
	}
	return out, nil
}

func (r *memoryGstRepo) Get(ctx context.Context, id int64) (*GstRate, error) {
	g, ok := r.rates[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return g, nil
}

func (r *memoryGstRepo) Create(ctx context.Context, g GstRate) (int64, error) {
	r.nextID++
	g.ID = r.nextID
	r.rates[g.ID] = &g
	return g.ID, nil
}

func (r *memoryGstRepo) Update(ctx context.Context, id int64, g GstRate) error {
	existing, ok := r.rates[id]
	if !ok {
		return shared.ErrNotFound
	}
	existing.Name = g.Name
	existing.Rate = g.Rate
	return nil
}

func (r *memoryGstRepo) ReferenceCount(ctx context.Context, id int64) (int, error) {
	return r.refs[id], nil
}

func (r *memoryGstRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.rates[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rates, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func TestDeleteRejectedWhileReferenced(t *testing.T) {
	repo := newMemoryGstRepo()
	svc := NewService(repo)

	rate, err := svc.Create(context.Background(), GstRateForm{Name: "GST 12%", Rate: 12})
	require.NoError(t, err)
	repo.refs[rate.ID] = 3

	err = svc.Delete(context.Background(), rate.ID)
	require.ErrorIs(t, err, shared.ErrInUse)
	require.Empty(t, repo.deleted, "no mutation may happen on a rejected delete")
	_, err = repo.Get(context.Background(), rate.ID)
	require.NoError(t, err)
}

func TestDeleteUnreferencedRate(t *testing.T) {
	repo := newMemoryGstRepo()
	svc := NewService(repo)

	rate, err := svc.Create(context.Background(), GstRateForm{Name: "GST 5%", Rate: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), rate.ID))
	_, err = repo.Get(context.Background(), rate.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryGstRepo())

	_, err := svc.Create(context.Background(), GstRateForm{Name: "  ", Rate: 5})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), GstRateForm{Name: "GST 18%", Rate: -1})
	require.Error(t, err)
}
