package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

type orgRepo struct{ s *Store }

func (r *orgRepo) Create(_ context.Context, org *entity.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("organizations.Create"); err != nil {
		return err
	}
	cp := *org
	r.s.orgs[org.ID] = &cp
	return nil
}

func (r *orgRepo) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("organizations.GetByID"); err != nil {
		return nil, err
	}
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *orgRepo) Update(_ context.Context, org *entity.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("organizations.Update"); err != nil {
		return err
	}
	if _, ok := r.s.orgs[org.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *org
	r.s.orgs[org.ID] = &cp
	return nil
}

func (r *orgRepo) ListByUser(_ context.Context, userID string) ([]*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("organizations.ListByUser"); err != nil {
		return nil, err
	}
	var out []*entity.Organization
	for _, m := range r.s.memberships {
		if m.UserID != userID || !m.IsActive {
			continue
		}
		if o, ok := r.s.orgs[m.OrgID]; ok {
			cp := *o
			out = append(out, &cp)
		}
	}
	newest(out, func(o *entity.Organization) time.Time { return o.CreatedAt })
	return out, nil
}

func (r *orgRepo) List(_ context.Context, limit, offset int) ([]*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("organizations.List"); err != nil {
		return nil, err
	}
	out := make([]*entity.Organization, 0, len(r.s.orgs))
	for _, o := range r.s.orgs {
		cp := *o
		out = append(out, &cp)
	}
	newest(out, func(o *entity.Organization) time.Time { return o.CreatedAt })
	return page(out, limit, offset), nil
}

type membershipRepo struct{ s *Store }

func (r *membershipRepo) Create(_ context.Context, m *entity.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("memberships.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.memberships {
		if existing.OrgID == m.OrgID && existing.UserID == m.UserID {
			return domain.ErrDuplicate
		}
	}
	cp := *m
	r.s.memberships[m.ID] = &cp
	return nil
}

func (r *membershipRepo) GetByID(_ context.Context, id string) (*entity.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("memberships.GetByID"); err != nil {
		return nil, err
	}
	m, ok := r.s.memberships[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *membershipRepo) GetByOrgAndUser(_ context.Context, orgID, userID string) (*entity.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("memberships.GetByOrgAndUser"); err != nil {
		return nil, err
	}
	for _, m := range r.s.memberships {
		if m.OrgID == orgID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *membershipRepo) ListByOrg(_ context.Context, orgID string, includeInactive bool) ([]*entity.Membership, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("memberships.ListByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Membership
	for _, m := range r.s.memberships {
		if m.OrgID != orgID || (!includeInactive && !m.IsActive) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	newest(out, func(m *entity.Membership) time.Time { return m.CreatedAt })
	return out, nil
}

func (r *membershipRepo) Update(_ context.Context, m *entity.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("memberships.Update"); err != nil {
		return err
	}
	if _, ok := r.s.memberships[m.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *m
	r.s.memberships[m.ID] = &cp
	return nil
}

type inviteRepo struct{ s *Store }

func (r *inviteRepo) CreateBatch(_ context.Context, invites []*entity.Invite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invites.CreateBatch"); err != nil {
		return err
	}
	for _, inv := range invites {
		cp := *inv
		r.s.invites[inv.ID] = &cp
	}
	return nil
}

func (r *inviteRepo) GetByID(_ context.Context, id string) (*entity.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invites.GetByID"); err != nil {
		return nil, err
	}
	inv, ok := r.s.invites[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *inviteRepo) ListPendingByOrg(_ context.Context, orgID string, now time.Time) ([]*entity.Invite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invites.ListPendingByOrg"); err != nil {
		return nil, err
	}
	var out []*entity.Invite
	for _, inv := range r.s.invites {
		if inv.OrgID == orgID && inv.IsPending(now) {
			cp := *inv
			out = append(out, &cp)
		}
	}
	newest(out, func(i *entity.Invite) time.Time { return i.CreatedAt })
	return out, nil
}

func (r *inviteRepo) MarkAccepted(_ context.Context, id, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invites.MarkAccepted"); err != nil {
		return err
	}
	inv, ok := r.s.invites[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.AcceptedAt != nil {
		return domain.ErrInviteUsed
	}
	accepted := at
	inv.AcceptedAt = &accepted
	inv.AcceptedBy = userID
	return nil
}

func (r *inviteRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("invites.Delete"); err != nil {
		return err
	}
	delete(r.s.invites, id)
	return nil
}

type profileRepo struct{ s *Store }

func (r *profileRepo) Create(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("profiles.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.s.profiles[p.ID] = &cp
	return nil
}

func (r *profileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("profiles.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("profiles.GetByEmail"); err != nil {
		return nil, err
	}
	for _, p := range r.s.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *profileRepo) SetDefaultOrg(_ context.Context, userID, orgID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.track("profiles.SetDefaultOrg"); err != nil {
		return err
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.DefaultOrgID = orgID
	return nil
}

func page[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
