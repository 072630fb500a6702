package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

const serverIDFile = ".server_id"

// GetPersistentServerID returns a stable ID for this gateway instance, used to
// tag startup log lines. Resolution order: override, the id
// file under storagePath, the sanitized hostname, then a random id that is
// written back to the id file.
func GetPersistentServerID(override, storagePath string) string {
	if override != "" {
		return override
	}

	idFile := filepath.Join(storagePath, serverIDFile)
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	if host := sanitizeHost(); host != "" {
		return "smsgate-" + host
	}

	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	id := "smsgate-" + hex.EncodeToString(buf)

	if err := CreateFolder(storagePath); err == nil {
		_ = os.WriteFile(idFile, []byte(id), 0644)
	}
	return id
}

func sanitizeHost() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" || hostname == "localhost" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, hostname)
}
