package customer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/customer"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]customer.Customer, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func newService() (*CustomerService, *MockCustomerRepository, *MockEventPublisher) {
	repo := new(MockCustomerRepository)
	pub := new(MockEventPublisher)
	return NewCustomerService(repo, pub, zap.NewNop()), repo, pub
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with default type", func(t *testing.T) {
		svc, repo, pub := newService()
		repo.On("ExistsByName", ctx, "Acme").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, CreateCustomerRequest{Name: "Acme"})
		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.Name)
		assert.Equal(t, "customer", resp.Type)
		pub.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("ExistsByName", ctx, "Acme").Return(true, nil)

		_, err := svc.Create(ctx, CreateCustomerRequest{Name: "Acme"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("ExistsByName", ctx, "Acme").Return(false, nil)

		_, err := svc.Create(ctx, CreateCustomerRequest{Name: "Acme", Type: "partner"})
		assert.Error(t, err)
	})
}

func TestCustomerService_Update(t *testing.T) {
	ctx := context.Background()
	existing, err := customer.NewCustomer("Acme", customer.TypeCustomer)
	require.NoError(t, err)
	existing.ClearDomainEvents()

	t.Run("case change skips the duplicate check", func(t *testing.T) {
		svc, repo, pub := newService()
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)
		pub.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Update(ctx, existing.ID, UpdateCustomerRequest{Name: "ACME", Type: "main"})
		require.NoError(t, err)
		assert.Equal(t, "ACME", resp.Name)
		assert.Equal(t, "main", resp.Type)
		repo.AssertNotCalled(t, "ExistsByName", mock.Anything, mock.Anything)
	})

	t.Run("rename to a taken name", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
		repo.On("ExistsByName", ctx, "Globex").Return(true, nil)

		_, err := svc.Update(ctx, existing.ID, UpdateCustomerRequest{Name: "Globex", Type: "customer"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := newService()
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, id, UpdateCustomerRequest{Name: "X", Type: "customer"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCustomerService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService()
	a, _ := customer.NewCustomer("Acme", customer.TypeReseller)

	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.Filters["type"] == "reseller" && f.Search == "ac"
	})).Return([]customer.Customer{*a}, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	items, total, err := svc.List(ctx, CustomerListFilter{Search: "ac", Type: "reseller"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].Name)
}

func TestCustomerService_ListSelectable(t *testing.T) {
	ctx := context.Background()
	a, _ := customer.NewCustomer("Acme", customer.TypeCustomer)
	b, _ := customer.NewCustomer("Globex", customer.TypeCustomer)

	t.Run("staff see every customer", func(t *testing.T) {
		svc, repo, _ := newService()
		repo.On("FindAll", ctx, mock.Anything).Return([]customer.Customer{*a, *b}, nil)

		items, err := svc.ListSelectable(ctx, true, nil)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		repo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("members see their own customers", func(t *testing.T) {
		svc, repo, _ := newService()
		ids := []uuid.UUID{b.ID}
		repo.On("FindByIDs", ctx, ids).Return([]customer.Customer{*b}, nil)

		items, err := svc.ListSelectable(ctx, false, ids)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, b.ID, items[0].ID)
	})
}

func TestCustomerService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newService()
	c, _ := customer.NewCustomer("Acme", customer.TypeCustomer)
	c.ClearDomainEvents()

	repo.On("FindByID", ctx, c.ID).Return(c, nil)
	repo.On("Delete", ctx, c.ID).Return(nil)
	pub.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == customer.EventTypeCustomerDeleted
	})).Return(nil)

	require.NoError(t, svc.Delete(ctx, c.ID))
	pub.AssertExpectations(t)
}
