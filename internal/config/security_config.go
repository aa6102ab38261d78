package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps methods to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// SponsorshipService - Public
	"/membership.v1.SponsorshipService/CreateApplication": SecurityPublic,
	"/membership.v1.SponsorshipService/GetApplication":    SecurityPublic,

	// SponsorshipService - Access Protected
	"/membership.v1.SponsorshipService/ApproveApplication":       SecurityAccess,
	"/membership.v1.SponsorshipService/RejectApplication":        SecurityAccess,
	"/membership.v1.SponsorshipService/SweepExpiredApplications": SecurityAccess,
	"/membership.v1.SponsorshipService/ListAuditLog":             SecurityAccess,

	// MemberService - All Access Protected
	"/membership.v1.MemberService/RegisterMember":  SecurityAccess,
	"/membership.v1.MemberService/GetMember":       SecurityAccess,
	"/membership.v1.MemberService/SetMemberActive": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given method
func GetSecurityLevel(method string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
