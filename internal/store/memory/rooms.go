package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

type roomRepo struct {
	s *Store
}

func (r *roomRepo) Create(ctx context.Context, rm *room.Room) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, existing := range s.rooms {
		if existing.Name == rm.Name {
			return room.ErrNameAlreadyUsed
		}
	}

	rm.ID = uuid.NewString()
	rm.CreatedAt = s.clock.Now().UTC()
	stored := *rm
	s.rooms[rm.ID] = &stored
	return nil
}

func (r *roomRepo) GetByID(_ context.Context, id string) (*room.Room, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rm, ok := s.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	out := *rm
	return &out, nil
}

func (r *roomRepo) List(_ context.Context, filter room.Filter) ([]*room.Room, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*room.Room
	for _, rm := range s.rooms {
		if filter.Kind != "" && rm.Kind != filter.Kind {
			continue
		}
		out := *rm
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, filter.Page, filter.PageSize), len(matched), nil
}

func (r *roomRepo) Update(ctx context.Context, rm *room.Room) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := s.rooms[rm.ID]
	if !ok {
		return room.ErrNotFound
	}
	for id, existing := range s.rooms {
		if id != rm.ID && existing.Name == rm.Name {
			return room.ErrNameAlreadyUsed
		}
	}

	stored.Name = rm.Name
	stored.Kind = rm.Kind
	stored.Capacity = rm.Capacity
	stored.HourlyRate = rm.HourlyRate
	return nil
}
