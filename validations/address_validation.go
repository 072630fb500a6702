package validations

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainAddress "github.com/shipliyo/smsgate/domains/address"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
)

var nineDigits = regexp.MustCompile(`^\d{9}$`)

// ErrInvalidAddressPhone is returned verbatim to address API clients.
const ErrInvalidAddressPhone = "Geçersiz telefon numarası. 9 haneli numara girin."

func ValidateAddressLookup(ctx context.Context, request domainAddress.LookupRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Phone, validation.Required, validation.Match(nineDigits)),
	)

	if err != nil {
		return pkgError.ValidationError(ErrInvalidAddressPhone)
	}

	return nil
}
