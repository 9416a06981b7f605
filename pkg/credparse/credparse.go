// Package credparse extracts credential fields from free-form pasted text.
// It is best effort: every field is optional and unmatched labels are simply
// absent from the result.
package credparse

import (
	"regexp"
	"strings"

	"mc-console-api/internal/model"
)

var (
	emailRe      = regexp.MustCompile(`(?i)Email:\s*(\S+)`)
	msPasswordRe = regexp.MustCompile(`(?is)Microsoft Password:\s*(.+?)(?:\n|Email Login:|$)`)
	emailLoginRe = regexp.MustCompile(`(?i)Email Login:\s*(\S+)`)
	emailPassRe  = regexp.MustCompile(`(?i)Email Password:\s*(\S+)`)
	emailSiteRe  = regexp.MustCompile(`(?i)Email Website:\s*(\S+)`)
)

// Parse scans text for "Label: value" credential lines and returns whatever
// it recognized. It never fails; an input with no labels yields the zero
// value.
func Parse(text string) model.Credentials {
	var creds model.Credentials

	if m := emailRe.FindStringSubmatch(text); m != nil {
		creds.Email = strings.TrimSpace(m[1])
	}
	if m := msPasswordRe.FindStringSubmatch(text); m != nil {
		creds.MicrosoftPassword = strings.TrimSpace(m[1])
	}
	if m := emailLoginRe.FindStringSubmatch(text); m != nil {
		creds.EmailLogin = strings.TrimSpace(m[1])
	}
	if m := emailPassRe.FindStringSubmatch(text); m != nil {
		creds.EmailPassword = strings.TrimSpace(m[1])
	}
	if m := emailSiteRe.FindStringSubmatch(text); m != nil {
		creds.EmailWebsite = strings.TrimSpace(m[1])
	}

	return creds
}
