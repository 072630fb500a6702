package usecase

import (
	"context"
	"fmt"

	domainAddress "github.com/shipliyo/smsgate/domains/address"
	"github.com/shipliyo/smsgate/validations"
)

// The shipping warehouse every customer code maps to.
var warehouse = domainAddress.Components{
	City:         "Tekirdağ",
	District:     "Çorlu",
	Neighborhood: "Hatip Mahallesi",
	Street:       "Fulya Sokak",
	Building:     "19/A",
}

type serviceAddress struct{}

func NewAddressService() domainAddress.IAddressUsecase {
	return &serviceAddress{}
}

func (serviceAddress) Lookup(ctx context.Context, request domainAddress.LookupRequest) (domainAddress.Address, error) {
	if err := validations.ValidateAddressLookup(ctx, request); err != nil {
		return domainAddress.Address{}, err
	}

	return domainAddress.Address{
		Phone: request.Phone,
		Address: fmt.Sprintf("BG%s %s %s No: %s %s, %s",
			request.Phone, warehouse.Neighborhood, warehouse.Street, warehouse.Building, warehouse.District, warehouse.City),
		Components: warehouse,
	}, nil
}
