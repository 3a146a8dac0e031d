package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("start date", " 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-02-29", FormatDate(d))
	assert.Empty(t, FormatDate(time.Time{}))

	_, err = ParseDate("start date", "29/02/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date")
}

func TestFilter(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())
	f.Page = 3
	assert.Equal(t, 40, f.Offset())

	g := f.With("status", "OPEN")
	assert.Equal(t, "OPEN", g.Filters["status"])
	assert.NotContains(t, f.Filters, "status")
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 0).TotalPages)
}

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("load: %w", NewDomainError("NOT_FOUND", "Contract not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestBaseAggregateRoot_Touch(t *testing.T) {
	root := NewBaseAggregateRoot()
	root.UpdatedAt = root.UpdatedAt.Add(-time.Hour)
	before := root.UpdatedAt
	root.MarkStored()

	root.Touch()

	assert.True(t, root.UpdatedAt.After(before))
	assert.Equal(t, 2, root.Version)
	assert.Equal(t, 1, root.StoredVersion(), "touch does not move the stored version")
	assert.True(t, root.IsStored())

	root.MarkStored()
	assert.Equal(t, 2, root.StoredVersion())
}

func TestRestoreAggregateRoot(t *testing.T) {
	root := RestoreAggregateRoot(NewBaseEntity(), 7)
	assert.True(t, root.IsStored())
	assert.Equal(t, 7, root.StoredVersion())
	assert.False(t, (&BaseAggregateRoot{Version: 1}).IsStored())
}
