package address

import "context"

// Components is the structured form of a delivery address.
type Components struct {
	City         string `json:"city"`
	District     string `json:"district"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Building     string `json:"building"`
}

type Address struct {
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	Components Components `json:"components"`
}

type LookupRequest struct {
	Phone string `query:"phone"`
}

type IAddressUsecase interface {
	// Lookup resolves the warehouse delivery address for the last 9 digits of a phone number.
	Lookup(ctx context.Context, request LookupRequest) (Address, error)
}
