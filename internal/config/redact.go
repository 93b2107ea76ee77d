package config

import "net/url"

const redactedValue = "xxxxx"

// Redacted returns a copy of the config that is safe to log: the signing
// key and the mail API key are masked, and passwords embedded in the
// database and Redis URLs are replaced.
func (c StructuredConfig) Redacted() StructuredConfig {
	c.App.TokenSignKey = maskSecret(c.App.TokenSignKey)
	c.Mail.APIKey = maskSecret(c.Mail.APIKey)
	c.Storage.DB.DSN = redactURL(c.Storage.DB.DSN)
	c.Storage.Redis.URL = redactURL(c.Storage.Redis.URL)
	return c
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return redactedValue
}

// redactURL hides the password of a URL-style connection string. Strings
// that do not parse as URLs, such as key=value DSNs, are masked entirely.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return redactedValue
	}
	return u.Redacted()
}
