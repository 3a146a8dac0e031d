package signature

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/scg/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScannerType(t *testing.T) {
	st, err := ParseScannerType("Nessus")
	require.NoError(t, err)
	assert.Equal(t, ScannerNessus, st)

	st, err = ParseScannerType("burpsuite")
	require.NoError(t, err)
	assert.Equal(t, ScannerBurpSuite, st)

	_, err = ParseScannerType("qualys")
	assert.Error(t, err)
}

func TestParseScannerView(t *testing.T) {
	st, err := ParseScannerView("BurpSuite", ViewUpload)
	require.NoError(t, err)
	assert.Equal(t, ScannerBurpSuite, st)

	for _, tc := range []struct {
		scanner string
		view    View
		message string
	}{
		{"qualys", ViewDetail, "Unsupported scanner type or view type: qualys - detail"},
		{"nessus", View("export"), "Unsupported scanner type or view type: nessus - export"},
	} {
		_, err := ParseScannerView(tc.scanner, tc.view)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_SCANNER", domainErr.Code)
		assert.Equal(t, tc.message, domainErr.Message)
	}
}

func TestRiskFactor(t *testing.T) {
	assert.Equal(t, RiskInformational, NormalizeRiskFactor("None"))
	assert.Equal(t, RiskHigh, NormalizeRiskFactor("High"))
	assert.Less(t, RiskCritical.Rank(), RiskLow.Rank())
	assert.Equal(t, len(RiskFactorOrder), RiskFactor("Unknown").Rank())
	assert.False(t, RiskNone.IsValid())
}

func TestParseCVEList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain list", `["CVE-2021-1", "CVE-2021-2"]`, []string{"CVE-2021-1", "CVE-2021-2"}},
		{"quotes and spaces stripped", `["\"CVE-2021-1\"", " CVE - 2021-2 ", ""]`, []string{"CVE-2021-1", "CVE-2021-2"}},
		{"invalid json", `not json`, []string{}},
		{"empty", ``, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCVEList(tt.raw))
		})
	}
}

func TestNessusEntry_ToSignature(t *testing.T) {
	batch := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := json.RawMessage(`{
		"id": 19506,
		"plugin_name": "Nessus Scan Information",
		"risk_factor": "None",
		"see_also": "https://a.example https://b.example",
		"cve": ["CVE-1"],
		"cvss_base_score": 5.0,
		"exploit_code_maturity": "` + strings.Repeat("x", 80) + `",
		"plugin_modification_date": "2023/11/28"
	}`)

	entry, err := DecodeNessusEntry(raw)
	require.NoError(t, err)
	sig, err := entry.ToSignature(batch)
	require.NoError(t, err)

	assert.Equal(t, 19506, sig.ID)
	assert.Equal(t, RiskInformational, sig.RiskFactor)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, sig.ReferenceList())
	assert.Equal(t, `["CVE-1"]`, sig.CVE)
	assert.Equal(t, `[]`, sig.XRef)
	assert.Len(t, sig.ExploitCodeMaturity, 50)
	require.NotNil(t, sig.PluginModificationDate)
	assert.Equal(t, "2023-11-28", sig.PluginModificationDate.Format("2006-01-02"))
	require.NotNil(t, sig.CVSSBaseScore)
	assert.Equal(t, batch, sig.LastUpdate)

	t.Run("bad date becomes null", func(t *testing.T) {
		e := &NessusEntry{ID: 1, PluginName: "x", RiskFactor: "Low", PluginModificationDate: "28-11-2023"}
		sig, err := e.ToSignature(batch)
		require.NoError(t, err)
		assert.Nil(t, sig.PluginModificationDate)
	})

	t.Run("non positive id", func(t *testing.T) {
		e := &NessusEntry{ID: 0}
		_, err := e.ToSignature(batch)
		assert.ErrorIs(t, err, ErrInvalidSignatureID)
	})

	t.Run("malformed entry", func(t *testing.T) {
		_, err := DecodeNessusEntry(json.RawMessage(`{"id": "abc"}`))
		assert.Error(t, err)
	})
}

func TestBurpEntry_ToSignature(t *testing.T) {
	entry, err := DecodeBurpEntry(json.RawMessage(`{"issue_type_id": 2097920, "name": "Cross-site scripting (reflected)", "retired": true}`))
	require.NoError(t, err)

	sig, err := entry.ToSignature(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2097920, sig.ID)
	assert.True(t, sig.Retired)
	assert.False(t, sig.LastUpdate.IsZero())
}

func TestUploadResult(t *testing.T) {
	total := UploadResult{New: 1}
	total.Add(UploadResult{Updated: 2, Errors: 1})
	assert.Equal(t, 4, total.Total())
	assert.Equal(t, "Processed signatures. New: 1, Updated: 2, Skipped: 0, Errors: 1", total.String())
}
