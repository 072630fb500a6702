package message

import "strings"

func containsAny(lowerBody string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(lowerBody, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
