package auth

import "crypto/subtle"

// Credentials is the api key pair a caller supplies on the query string.
type Credentials struct {
	APIClientID string `json:"apiClientId"`
	APIToken    string `json:"apiToken"`
}

// Trusted holds the accepted key pairs and tenant ids.
type Trusted struct {
	APIClients []Credentials `json:"apiClients"`
	TenantIDs  []string      `json:"tenantIds"`
}

// Authenticate reports whether supplied matches one of the trusted pairs.
// Every trusted pair is compared; the result never depends on which pair matched.
func Authenticate(supplied Credentials, trusted Trusted) bool {
	if supplied.APIClientID == "" || supplied.APIToken == "" {
		return false
	}
	matched := 0
	for _, c := range trusted.APIClients {
		id := subtle.ConstantTimeCompare([]byte(supplied.APIClientID), []byte(c.APIClientID))
		token := subtle.ConstantTimeCompare([]byte(supplied.APIToken), []byte(c.APIToken))
		matched |= id & token
	}
	return matched == 1
}

// ValidTenant reports whether the tenant named in a callout is trusted.
func ValidTenant(tenantID string, trusted Trusted) bool {
	if tenantID == "" {
		return false
	}
	matched := 0
	for _, t := range trusted.TenantIDs {
		matched |= subtle.ConstantTimeCompare([]byte(tenantID), []byte(t))
	}
	return matched == 1
}
