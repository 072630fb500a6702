package validations

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	pkgError "github.com/shipliyo/smsgate/pkg/error"
)

const MaxUtteranceLength = 500

var (
	sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

	maliciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+=`),
		regexp.MustCompile(`(?is)select.*from`),
		regexp.MustCompile(`(?is)union.*select`),
	}
)

// ValidateConverse checks a chat request. An empty message is valid and
// yields the main menu.
func ValidateConverse(ctx context.Context, request domainDialogue.ConverseRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SessionID, validation.Required, validation.Length(1, 100), validation.Match(sessionIDPattern)),
		validation.Field(&request.Utterance, validation.RuneLength(0, MaxUtteranceLength), validation.By(notMalicious)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func notMalicious(value interface{}) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	for _, re := range maliciousPatterns {
		if re.MatchString(s) {
			return validation.NewError("validation_malicious_input", "contains invalid content")
		}
	}
	return nil
}
