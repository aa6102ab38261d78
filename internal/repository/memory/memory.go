// Package memory is an in-process implementation of repository.Store used by
// tests. Transactions are serialized on a single mutex and rolled back by
// restoring a snapshot, which makes every WithinTx call linearizable.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"membership-backend/internal/domain"
	"membership-backend/internal/repository"
)

type state struct {
	applications map[string]domain.Application // by id
	members      map[string]domain.Member      // by id
	audit        []domain.AuditEntry
	nextAuditID  int64
}

func (s *state) clone() *state {
	c := &state{
		applications: make(map[string]domain.Application, len(s.applications)),
		members:      make(map[string]domain.Member, len(s.members)),
		audit:        append([]domain.AuditEntry(nil), s.audit...),
		nextAuditID:  s.nextAuditID,
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	return c
}

type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool

	// FailAuditAppend makes every audit append fail, for exercising rollback.
	FailAuditAppend error
}

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &state{
			applications: make(map[string]domain.Application),
			members:      make(map[string]domain.Member),
		},
	}
}

func (s *Store) Applications() repository.ApplicationRepository { return applications{s} }
func (s *Store) Members() repository.MemberRepository           { return members{s} }
func (s *Store) AuditLog() repository.AuditLogRepository        { return auditLog{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true, FailAuditAppend: s.FailAuditAppend}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// locked runs fn under the store mutex unless already inside a transaction.
func (s *Store) locked(fn func(d *state) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

// PutMember seeds a member directly.
func (s *Store) PutMember(m domain.Member) {
	_ = s.locked(func(d *state) error {
		d.members[m.ID] = m
		return nil
	})
}

// PutApplication seeds or overwrites an application directly.
func (s *Store) PutApplication(app domain.Application) {
	_ = s.locked(func(d *state) error {
		d.applications[app.ID] = app
		return nil
	})
}

type applications struct{ s *Store }

func (r applications) Create(ctx context.Context, app *domain.Application) error {
	return r.s.locked(func(d *state) error {
		for _, existing := range d.applications {
			if existing.Token == app.Token {
				return domain.ErrConflict
			}
			if existing.Status == domain.ApplicationStatusPending &&
				domain.EmailsEqual(existing.ApplicantEmail, app.ApplicantEmail) &&
				domain.EmailsEqual(existing.SponsorEmail, app.SponsorEmail) {
				return domain.ErrConflict
			}
		}
		d.applications[app.ID] = *app
		return nil
	})
}

func (r applications) GetByToken(ctx context.Context, token string) (*domain.Application, error) {
	var out *domain.Application
	err := r.s.locked(func(d *state) error {
		for _, app := range d.applications {
			if app.Token == token {
				a := app
				out = &a
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r applications) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Application, error) {
	return r.GetByToken(ctx, token)
}

func (r applications) GetPendingByPair(ctx context.Context, applicantEmail, sponsorEmail string) (*domain.Application, error) {
	var out *domain.Application
	err := r.s.locked(func(d *state) error {
		for _, app := range d.applications {
			if app.Status == domain.ApplicationStatusPending &&
				domain.EmailsEqual(app.ApplicantEmail, applicantEmail) &&
				domain.EmailsEqual(app.SponsorEmail, sponsorEmail) {
				a := app
				out = &a
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r applications) UpdateStatus(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) error {
	return r.s.locked(func(d *state) error {
		stored, ok := d.applications[app.ID]
		if !ok || stored.Status != expected {
			return domain.ErrConflict
		}
		stored.Status = app.Status
		stored.Token = app.Token
		stored.ApprovedAt = app.ApprovedAt
		stored.ApprovedByID = app.ApprovedByID
		stored.RejectedAt = app.RejectedAt
		d.applications[app.ID] = stored
		return nil
	})
}

func (r applications) ListOverduePending(ctx context.Context, now time.Time, limit int) ([]domain.Application, error) {
	var out []domain.Application
	err := r.s.locked(func(d *state) error {
		for _, app := range d.applications {
			if app.Status == domain.ApplicationStatusPending && app.ExpiresAt.Before(now) {
				out = append(out, app)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type members struct{ s *Store }

func (r members) Create(ctx context.Context, m *domain.Member) error {
	return r.s.locked(func(d *state) error {
		for _, existing := range d.members {
			if domain.EmailsEqual(existing.Email, m.Email) {
				return domain.ErrConflict
			}
		}
		d.members[m.ID] = *m
		return nil
	})
}

func (r members) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	var out *domain.Member
	err := r.s.locked(func(d *state) error {
		m, ok := d.members[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r members) GetByIDForUpdate(ctx context.Context, id string) (*domain.Member, error) {
	return r.GetByID(ctx, id)
}

func (r members) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var out *domain.Member
	err := r.s.locked(func(d *state) error {
		for _, m := range d.members {
			if domain.EmailsEqual(m.Email, email) {
				found := m
				out = &found
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r members) Update(ctx context.Context, m *domain.Member) error {
	return r.s.locked(func(d *state) error {
		stored, ok := d.members[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		stored.Name = m.Name
		stored.Profile = m.Profile
		stored.Active = m.Active
		stored.UpdatedAt = m.UpdatedAt
		d.members[m.ID] = stored
		return nil
	})
}

func (r members) UpdateApprovalWindow(ctx context.Context, m *domain.Member) error {
	return r.s.locked(func(d *state) error {
		stored, ok := d.members[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		stored.ApprovalsInWindow = m.ApprovalsInWindow
		stored.LastApprovalAt = m.LastApprovalAt
		stored.UpdatedAt = m.UpdatedAt
		d.members[m.ID] = stored
		return nil
	})
}

type auditLog struct{ s *Store }

func (r auditLog) Append(ctx context.Context, e *domain.AuditEntry) error {
	if r.s.FailAuditAppend != nil {
		return r.s.FailAuditAppend
	}
	return r.s.locked(func(d *state) error {
		if e.Event == domain.AuditEventExpired {
			for _, existing := range d.audit {
				if existing.ApplicationID == e.ApplicationID && existing.Event == domain.AuditEventExpired {
					return domain.ErrConflict
				}
			}
		}
		d.nextAuditID++
		e.ID = d.nextAuditID
		d.audit = append(d.audit, *e)
		return nil
	})
}

func (r auditLog) ListFor(ctx context.Context, applicationID string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := r.s.locked(func(d *state) error {
		for _, e := range d.audit {
			if e.ApplicationID == applicationID {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out, err
}

func (r auditLog) Exists(ctx context.Context, applicationID string, event domain.AuditEvent) (bool, error) {
	var found bool
	err := r.s.locked(func(d *state) error {
		for _, e := range d.audit {
			if e.ApplicationID == applicationID && e.Event == event {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}
