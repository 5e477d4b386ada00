package models

import "time"

// License is owned by the platform backend. This service creates and revokes
// licenses through the platform API but never stores them.
type License struct {
	ID         string    `json:"id"`
	Tier       Tier      `json:"tier"`
	Issued     time.Time `json:"issued"`
	Expires    time.Time `json:"expires"`
	Revoked    bool      `json:"revoked"`
	LicenseKey string    `json:"license_key,omitempty"`
}

// Ready reports whether the license can be surfaced to the user as usable:
// not revoked and with the key already populated by the backend.
func (l License) Ready() bool {
	return !l.Revoked && l.LicenseKey != ""
}

// Profile is the per-user view fetched from the platform with the user's own
// bearer token.
type Profile struct {
	WorkOSUserID string    `json:"workos_user_id"`
	Email        string    `json:"email"`
	CustomerID   *string   `json:"customer_id"`
	CompanyName  *string   `json:"company_name"`
	Licenses     []License `json:"licenses"`
}

// ActiveLicense returns the primary (first non-revoked) license, or nil.
// History may contain several licenses; only one is surfaced as active.
func (p *Profile) ActiveLicense() *License {
	for i := range p.Licenses {
		if !p.Licenses[i].Revoked {
			return &p.Licenses[i]
		}
	}
	return nil
}

// ReadyLicense returns the first license that is usable end to end, or nil.
func (p *Profile) ReadyLicense() *License {
	for i := range p.Licenses {
		if p.Licenses[i].Ready() {
			return &p.Licenses[i]
		}
	}
	return nil
}
