package domain

import (
	"strings"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
	ApplicationStatusExpired  ApplicationStatus = "EXPIRED"
)

// UsedTokenPrefix marks a token that has already been consumed by an approval.
const UsedTokenPrefix = "USED-"

// IsTerminal reports whether no further transition is allowed out of s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected || s == ApplicationStatusExpired
}

// Profile is the applicant-supplied payload copied verbatim into the Member on approval.
type Profile struct {
	Address                   string `json:"address"`
	ProfessionalQualification string `json:"professional_qualification"`
	AreaOfInterest            string `json:"area_of_interest"`
	Contribution              string `json:"contribution,omitempty"`
	Employer                  string `json:"employer,omitempty"`
	LinkedIn                  string `json:"linkedin,omitempty"`
	WantsMentor               bool   `json:"wants_mentor"`
	OffersMentorship          bool   `json:"offers_mentorship"`
	MentorProfile             string `json:"mentor_profile,omitempty"`
	MenteeProfile             string `json:"mentee_profile,omitempty"`
}

type Application struct {
	ID               string            `json:"id"`
	Token            string            `json:"token"`
	ApplicantName    string            `json:"applicant_name"`
	ApplicantEmail   string            `json:"applicant_email"`
	SponsorEmail     string            `json:"sponsor_email"`
	SponsorMemberID  string            `json:"sponsor_member_id"`
	Profile          Profile           `json:"profile"`
	Status           ApplicationStatus `json:"status"`
	VerificationCode string            `json:"-"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty"`
	ApprovedByID     *string           `json:"approved_by_id,omitempty"`
	RejectedAt       *time.Time        `json:"rejected_at,omitempty"`
}

// IsOverdue reports whether a pending application has outlived its link.
func (a *Application) IsOverdue(now time.Time) bool {
	return a.Status == ApplicationStatusPending && now.After(a.ExpiresAt)
}

// IsSelfSponsored reports whether the applicant named themselves as sponsor.
func (a *Application) IsSelfSponsored() bool {
	return EmailsEqual(a.ApplicantEmail, a.SponsorEmail)
}

// ApplicationInput is what a prospective member submits.
type ApplicationInput struct {
	ApplicantName   string  `json:"applicant_name"`
	ApplicantEmail  string  `json:"applicant_email"`
	SponsorEmail    string  `json:"sponsor_email"`
	SponsorMemberID string  `json:"sponsor_member_id"`
	Profile         Profile `json:"profile"`
}

// NormalizeEmail lower-cases and trims an address for comparisons and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func EmailsEqual(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
