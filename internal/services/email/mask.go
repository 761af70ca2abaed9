// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import "strings"

// MaskEmail shortens an address for logs: "root.admin@example.com" becomes
// "roo***@example.com".
func MaskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return "***"
	}
	runes := []rune(local)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes) + "***@" + domain
}
