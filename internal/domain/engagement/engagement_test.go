package engagement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/catalog"
	"github.com/scg/portal/internal/domain/contract"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeContract(t *testing.T, customerID uuid.UUID) (*contract.Contract, uuid.UUID) {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := contract.NewContract(customerID, start, "C-1", start, start.AddDate(1, 0, 0), nil, nil, "")
	require.NoError(t, err)
	line, err := c.AddLine(uuid.New(), "Support", decimal.NewFromInt(100), 10, nil)
	require.NoError(t, err)
	require.NoError(t, c.ChangeStatus(contract.StatusActive))
	return c, line.ID
}

func TestEngagementNumbers(t *testing.T) {
	assert.Equal(t, "EFF-0001", NextNumber(""))
	assert.Equal(t, "EFF-0043", NextNumber("EFF-0042"))
	assert.Equal(t, "EFF-10000", NextNumber("EFF-9999"))
	assert.Equal(t, "EFF-0001", NextNumber("garbage"))
}

func TestNewEngagement(t *testing.T) {
	customerID := uuid.New()
	userID := uuid.New()

	t.Run("opens with defaults", func(t *testing.T) {
		c, lineID := activeContract(t, customerID)
		e, err := NewEngagement(customerID, "EFF-0001", c, lineID, catalog.ReportKindSupport, "VPN outage", "", "Users cannot connect", "", userID)
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, e.Status)
		assert.Equal(t, PriorityMedium, e.Priority)
		assert.Equal(t, c.ID, e.ContractID)
		assert.Equal(t, &userID, e.CreatedBy)
	})

	t.Run("contract not active", func(t *testing.T) {
		c, lineID := activeContract(t, customerID)
		require.NoError(t, c.ChangeStatus(contract.StatusTrial))
		_, err := NewEngagement(customerID, "EFF-0001", c, lineID, catalog.ReportKindSupport, "x", "", "d", "", userID)
		require.Error(t, err)
		assert.Equal(t, "Engagements can only be created for active contracts.", err.Error())
	})

	t.Run("line from another contract", func(t *testing.T) {
		c, _ := activeContract(t, customerID)
		_, err := NewEngagement(customerID, "EFF-0001", c, uuid.New(), catalog.ReportKindSupport, "x", "", "d", "", userID)
		require.Error(t, err)
		assert.Equal(t, "Selected service must belong to the selected contract.", err.Error())
	})

	t.Run("contract of another customer", func(t *testing.T) {
		c, lineID := activeContract(t, uuid.New())
		_, err := NewEngagement(customerID, "EFF-0001", c, lineID, catalog.ReportKindSupport, "x", "", "d", "", userID)
		require.Error(t, err)
		assert.Equal(t, "Contract must belong to the selected customer.", err.Error())
	})

	t.Run("non support service", func(t *testing.T) {
		c, lineID := activeContract(t, customerID)
		_, err := NewEngagement(customerID, "EFF-0001", c, lineID, catalog.ReportKindNessus, "x", "", "d", "", userID)
		assert.Error(t, err)
	})
}

func TestValidateHours(t *testing.T) {
	tests := []struct {
		hours string
		ok    bool
	}{
		{"0.5", true},
		{"1", true},
		{"7.5", true},
		{"0", false},
		{"0.25", false},
		{"1.75", false},
		{"10000", false},
	}
	for _, tt := range tests {
		t.Run(tt.hours, func(t *testing.T) {
			err := ValidateHours(decimal.RequireFromString(tt.hours))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewTimeEntry_DefaultsToToday(t *testing.T) {
	entry, err := NewTimeEntry(uuid.New(), "Investigated", "", decimal.RequireFromString("1.5"), time.Time{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), entry.Date.Format("2006-01-02"))
}

func TestComputeHours(t *testing.T) {
	h := ComputeHours(10, decimal.RequireFromString("7.5"), decimal.RequireFromString("2"))
	assert.Equal(t, "2.5", h.Remaining.String())
	assert.Equal(t, "75", h.PercentageUsed.String())
	assert.Equal(t, "20", h.EngagementPercentage.String())

	zero := ComputeHours(0, decimal.NewFromInt(3), decimal.Zero)
	assert.True(t, zero.PercentageUsed.IsZero())
	assert.Equal(t, "-3", zero.Remaining.String())
}

func TestOverrunWarning(t *testing.T) {
	assert.Empty(t, OverrunWarning(10, decimal.NewFromInt(9), decimal.NewFromInt(1)))
	assert.Equal(t,
		"This entry will exceed the contracted hours. Contracted: 10h, Total used: 9.50h, This entry: 1.00h",
		OverrunWarning(10, decimal.RequireFromString("9.5"), decimal.NewFromInt(1)))
}

func TestParseSupportSort(t *testing.T) {
	assert.Equal(t, SortHoursDesc, ParseSupportSort("-hours_used"))
	assert.Equal(t, SortCreatedDesc, ParseSupportSort("drop table"))
}
