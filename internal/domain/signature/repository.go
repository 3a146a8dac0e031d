package signature

import (
	"context"

	"github.com/scg/portal/internal/domain/shared"
)

// NessusSignatureRepository defines persistence for Nessus signatures.
// Supported filter keys: "id", "risk_factor". Search covers name and description.
type NessusSignatureRepository interface {
	FindByID(ctx context.Context, id int) (*NessusSignature, error)
	FindByIDs(ctx context.Context, ids []int) (map[int]*NessusSignature, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]NessusSignature, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, sig *NessusSignature) error
	Update(ctx context.Context, sig *NessusSignature) error
	Delete(ctx context.Context, id int) error

	// Upsert inserts or replaces a batch and reports how many rows were new
	Upsert(ctx context.Context, sigs []NessusSignature) (created int, updated int, err error)
}

// BurpSuiteSignatureRepository defines persistence for Burp Suite signatures.
// Supported filter keys: "id". Search covers name and description.
type BurpSuiteSignatureRepository interface {
	FindByID(ctx context.Context, id int) (*BurpSuiteSignature, error)
	FindByIDs(ctx context.Context, ids []int) (map[int]*BurpSuiteSignature, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]BurpSuiteSignature, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Create(ctx context.Context, sig *BurpSuiteSignature) error
	Update(ctx context.Context, sig *BurpSuiteSignature) error
	Delete(ctx context.Context, id int) error
	Upsert(ctx context.Context, sigs []BurpSuiteSignature) (created int, updated int, err error)
}
