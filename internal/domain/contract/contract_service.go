package contract

import (
	"github.com/google/uuid"
	"github.com/scg/portal/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContractService is a line of a contract: a service, a quantity and an optional discount
type ContractService struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	ContractID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_contract_service,priority:1"`
	ServiceID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_contract_service,priority:2"`
	ServiceName string           `gorm:"-"`
	UnitPrice   decimal.Decimal  `gorm:"-"`
	Quantity    int              `gorm:"not null;default:1"`
	Discount    *decimal.Decimal `gorm:"type:decimal(5,2)"`
}

// TableName returns the table name for GORM
func (ContractService) TableName() string {
	return "contract_services"
}

func newContractService(contractID, serviceID uuid.UUID, serviceName string, unitPrice decimal.Decimal, quantity int, discount *decimal.Decimal) (*ContractService, error) {
	if serviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERVICE", "Service is required")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validatePercentage("INVALID_DISCOUNT", "Discount", discount); err != nil {
		return nil, err
	}
	return &ContractService{
		ID:          uuid.New(),
		ContractID:  contractID,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		Discount:    discount,
	}, nil
}

// ContractedHours is the quantity read as hours, for support services
func (l *ContractService) ContractedHours() decimal.Decimal {
	return decimal.NewFromInt(int64(l.Quantity))
}

func validateQuantity(q int) error {
	if q < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1.")
	}
	return nil
}
