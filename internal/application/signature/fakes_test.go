package signature

import (
	"context"
	"sync"

	"github.com/scg/portal/internal/domain/shared"
	"github.com/scg/portal/internal/domain/signature"
)

// fakeNessusRepo is an in-memory NessusSignatureRepository
type fakeNessusRepo struct {
	mu       sync.Mutex
	sigs     map[int]signature.NessusSignature
	upserts  int
	failNext bool
	lastList shared.Filter
}

func newFakeNessusRepo() *fakeNessusRepo {
	return &fakeNessusRepo{sigs: map[int]signature.NessusSignature{}}
}

func (r *fakeNessusRepo) FindByID(_ context.Context, id int) (*signature.NessusSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sigs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r *fakeNessusRepo) FindByIDs(_ context.Context, ids []int) (map[int]*signature.NessusSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int]*signature.NessusSignature{}
	for _, id := range ids {
		if s, ok := r.sigs[id]; ok {
			out[id] = &s
		}
	}
	return out, nil
}

func (r *fakeNessusRepo) FindAll(_ context.Context, filter shared.Filter) ([]signature.NessusSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = filter
	out := make([]signature.NessusSignature, 0, len(r.sigs))
	for _, s := range r.sigs {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeNessusRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sigs)), nil
}

func (r *fakeNessusRepo) Create(_ context.Context, sig *signature.NessusSignature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs[sig.ID] = *sig
	return nil
}

func (r *fakeNessusRepo) Update(ctx context.Context, sig *signature.NessusSignature) error {
	return r.Create(ctx, sig)
}

func (r *fakeNessusRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sigs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.sigs, id)
	return nil
}

func (r *fakeNessusRepo) Upsert(_ context.Context, sigs []signature.NessusSignature) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return 0, 0, shared.NewDomainError("DB_ERROR", "write failed")
	}
	r.upserts++
	var created, updated int
	for _, s := range sigs {
		if _, ok := r.sigs[s.ID]; ok {
			updated++
		} else {
			created++
		}
		r.sigs[s.ID] = s
	}
	return created, updated, nil
}

// fakeBurpRepo is an in-memory BurpSuiteSignatureRepository
type fakeBurpRepo struct {
	mu   sync.Mutex
	sigs map[int]signature.BurpSuiteSignature
}

func newFakeBurpRepo() *fakeBurpRepo {
	return &fakeBurpRepo{sigs: map[int]signature.BurpSuiteSignature{}}
}

func (r *fakeBurpRepo) FindByID(_ context.Context, id int) (*signature.BurpSuiteSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sigs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (r *fakeBurpRepo) FindByIDs(_ context.Context, ids []int) (map[int]*signature.BurpSuiteSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int]*signature.BurpSuiteSignature{}
	for _, id := range ids {
		if s, ok := r.sigs[id]; ok {
			out[id] = &s
		}
	}
	return out, nil
}

func (r *fakeBurpRepo) FindAll(_ context.Context, _ shared.Filter) ([]signature.BurpSuiteSignature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]signature.BurpSuiteSignature, 0, len(r.sigs))
	for _, s := range r.sigs {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeBurpRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sigs)), nil
}

func (r *fakeBurpRepo) Create(_ context.Context, sig *signature.BurpSuiteSignature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs[sig.ID] = *sig
	return nil
}

func (r *fakeBurpRepo) Update(ctx context.Context, sig *signature.BurpSuiteSignature) error {
	return r.Create(ctx, sig)
}

func (r *fakeBurpRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sigs, id)
	return nil
}

func (r *fakeBurpRepo) Upsert(_ context.Context, sigs []signature.BurpSuiteSignature) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var created, updated int
	for _, s := range sigs {
		if _, ok := r.sigs[s.ID]; ok {
			updated++
		} else {
			created++
		}
		r.sigs[s.ID] = s
	}
	return created, updated, nil
}
