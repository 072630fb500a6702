package validations

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainIngest "github.com/shipliyo/smsgate/domains/ingest"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
)

var phoneSender = regexp.MustCompile(`^\+?\d{2,15}$`)

// notBlank rejects strings made only of whitespace, which Required lets through.
var notBlank = validation.By(func(value interface{}) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
})

// ValidateIngest checks a gateway payload. Senders that contain a letter are
// brand names and skip the phone format check.
func ValidateIngest(ctx context.Context, request domainIngest.IngestRequest, maxBodyLength int, checkPhone bool) error {
	senderRules := []validation.Rule{validation.Required, validation.RuneLength(1, 64)}
	if checkPhone && !request.SkipPhoneCheck && !isBrandSender(request.Sender) {
		senderRules = append(senderRules, validation.Match(phoneSender).Error("must be a phone number or a sender name"))
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Sender, senderRules...),
		validation.Field(&request.Body, validation.Required, notBlank, validation.RuneLength(1, maxBodyLength)),
		validation.Field(&request.DeviceID, validation.RuneLength(0, 128)),
		validation.Field(&request.ClientTimestamp, validation.RuneLength(0, 64)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func isBrandSender(sender string) bool {
	for _, r := range sender {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
