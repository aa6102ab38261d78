package grpc

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"membership-backend/internal/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func MapProfileToStruct(p domain.Profile) map[string]any {
	return map[string]any{
		"address":                    p.Address,
		"professional_qualification": p.ProfessionalQualification,
		"area_of_interest":           p.AreaOfInterest,
		"contribution":               p.Contribution,
		"employer":                   p.Employer,
		"linkedin":                   p.LinkedIn,
		"wants_mentor":               p.WantsMentor,
		"offers_mentorship":          p.OffersMentorship,
		"mentor_profile":             p.MentorProfile,
		"mentee_profile":             p.MenteeProfile,
	}
}

// MapApplicationToStruct never includes the verification code. The token is
// only echoed back to callers who already presented it.
func MapApplicationToStruct(a *domain.Application, includeToken bool) map[string]any {
	if a == nil {
		return nil
	}
	m := map[string]any{
		"id":                a.ID,
		"applicant_name":    a.ApplicantName,
		"applicant_email":   a.ApplicantEmail,
		"sponsor_email":     a.SponsorEmail,
		"sponsor_member_id": a.SponsorMemberID,
		"profile":           MapProfileToStruct(a.Profile),
		"status":            string(a.Status),
		"created_at":        formatTime(a.CreatedAt),
		"expires_at":        formatTime(a.ExpiresAt),
		"approved_at":       optionalTime(a.ApprovedAt),
		"approved_by_id":    optionalString(a.ApprovedByID),
		"rejected_at":       optionalTime(a.RejectedAt),
	}
	if includeToken {
		m["token"] = a.Token
	}
	return m
}

func MapMemberToStruct(m *domain.Member) map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"id":                  m.ID,
		"email":               m.Email,
		"name":                m.Name,
		"active":              m.Active,
		"profile":             MapProfileToStruct(m.Profile),
		"approvals_in_window": int64(m.ApprovalsInWindow),
		"last_approval_at":    optionalTime(m.LastApprovalAt),
		"created_at":          formatTime(m.CreatedAt),
		"updated_at":          formatTime(m.UpdatedAt),
	}
}

func MapAuditEntryToStruct(e domain.AuditEntry) map[string]any {
	metadata := make(map[string]any, len(e.Metadata))
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	return map[string]any{
		"id":             e.ID,
		"application_id": e.ApplicationID,
		"event":          string(e.Event),
		"performed_by":   optionalString(e.PerformedBy),
		"at":             formatTime(e.At),
		"metadata":       metadata,
	}
}

func MapStructToApplicationInput(s *structpb.Struct) domain.ApplicationInput {
	profile := structField(s, "profile")
	return domain.ApplicationInput{
		ApplicantName:   stringField(s, "applicant_name"),
		ApplicantEmail:  stringField(s, "applicant_email"),
		SponsorEmail:    stringField(s, "sponsor_email"),
		SponsorMemberID: stringField(s, "sponsor_member_id"),
		Profile: domain.Profile{
			Address:                   stringField(profile, "address"),
			ProfessionalQualification: stringField(profile, "professional_qualification"),
			AreaOfInterest:            stringField(profile, "area_of_interest"),
			Contribution:              stringField(profile, "contribution"),
			Employer:                  stringField(profile, "employer"),
			LinkedIn:                  stringField(profile, "linkedin"),
			WantsMentor:               boolField(profile, "wants_mentor"),
			OffersMentorship:          boolField(profile, "offers_mentorship"),
			MentorProfile:             stringField(profile, "mentor_profile"),
			MenteeProfile:             stringField(profile, "mentee_profile"),
		},
	}
}

func stringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	if s == nil {
		return false
	}
	return s.GetFields()[name].GetBoolValue()
}

func structField(s *structpb.Struct, name string) *structpb.Struct {
	if s == nil {
		return nil
	}
	return s.GetFields()[name].GetStructValue()
}
