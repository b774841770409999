package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nekogravitycat/coworking-ledger/internal/member"
)

type memberRepo struct {
	s *Store
}

func (r *memberRepo) Create(ctx context.Context, m *member.Member) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, existing := range s.members {
		if existing.Email == m.Email {
			return member.ErrEmailAlreadyUsed
		}
	}

	m.ID = uuid.NewString()
	m.CreatedAt = s.clock.Now().UTC()
	if m.Status == "" {
		m.Status = member.StatusActive
	}
	stored := *m
	s.members[m.ID] = &stored
	return nil
}

func (r *memberRepo) GetByID(_ context.Context, id string) (*member.Member, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return nil, member.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (r *memberRepo) GetByEmail(_ context.Context, email string) (*member.Member, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.Email == email {
			out := *m
			return &out, nil
		}
	}
	return nil, member.ErrNotFound
}

func (r *memberRepo) List(_ context.Context, filter member.Filter) ([]*member.Member, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(filter.Query)
	var matched []*member.Member
	for _, m := range s.members {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.FullName), q) && !strings.Contains(m.Email, q) {
			continue
		}
		out := *m
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].FullName != matched[j].FullName {
			return matched[i].FullName < matched[j].FullName
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *memberRepo) Update(ctx context.Context, m *member.Member) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := s.members[m.ID]
	if !ok {
		return member.ErrNotFound
	}
	for id, existing := range s.members {
		if id != m.ID && existing.Email == m.Email {
			return member.ErrEmailAlreadyUsed
		}
	}

	// Status is owned by the booking engine and not changed here.
	stored.FullName = m.FullName
	stored.Email = m.Email
	stored.Phone = m.Phone
	stored.CompanyID = m.CompanyID
	return nil
}
