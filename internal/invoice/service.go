package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
)

// maxGenerateAttempts bounds retries after losing a billing race.
const maxGenerateAttempts = 3

type Service interface {
	// Generate bills every confirmed booking of the member that ended by asOf
	// and is not on an invoice yet. A zero asOf means now.
	Generate(ctx context.Context, memberID string, asOf time.Time) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Invoice, int, error)
	Close(ctx context.Context, id string) (*Invoice, error)
	Total(ctx context.Context, id string) (decimal.Decimal, error)
}

type service struct {
	repo    Repository
	members member.Service
	clock   clock.Clock
}

func NewService(repo Repository, members member.Service, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &service{repo: repo, members: members, clock: clk}
}

func (s *service) Generate(ctx context.Context, memberID string, asOf time.Time) (*Invoice, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, ErrMemberRequired
	}
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	asOf = asOf.UTC()

	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		billables, err := s.repo.ListBillable(ctx, memberID, asOf)
		if err != nil {
			return nil, err
		}

		inv := &Invoice{
			MemberID:   memberID,
			MemberName: m.FullName,
			IssueDate:  asOf.Truncate(24 * time.Hour),
			Status:     StatusOpen,
			Lines:      buildLines(billables),
		}

		err = s.repo.Create(ctx, inv)
		if errors.Is(err, ErrBookingAlreadyBilled) && attempt < maxGenerateAttempts {
			logger.FromContext(ctx).Info("invoice generation lost a billing race, retrying",
				zap.String("member_id", memberID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		logger.FromContext(ctx).Info("invoice generated",
			zap.String("invoice_id", inv.ID),
			zap.String("member_id", memberID),
			zap.Int("lines", len(inv.Lines)),
			zap.Stringer("total", inv.Total()),
		)
		return inv, nil
	}
}

func buildLines(billables []Billable) []Line {
	lines := make([]Line, 0, len(billables))
	for i, b := range billables {
		d := b.End.Sub(b.Start)
		lines = append(lines, Line{
			Position:    i + 1,
			BookingID:   b.BookingID,
			Start:       b.Start,
			End:         b.End,
			Description: describe(b),
			Hours:       money.Hours(d).Round(4),
			Rate:        b.HourlyRate,
			Amount:      money.Charge(d, b.HourlyRate),
		})
	}
	return lines
}

func describe(b Billable) string {
	start, end := b.Start.UTC(), b.End.UTC()
	if start.Format(time.DateOnly) == end.Format(time.DateOnly) {
		return fmt.Sprintf("%s %s %s-%s", b.RoomName, start.Format(time.DateOnly), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s %s to %s", b.RoomName, start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}

func (s *service) GetByID(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Invoice, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// Close freezes an invoice. Closing a closed invoice is a no-op.
func (s *service) Close(ctx context.Context, id string) (*Invoice, error) {
	inv, changed, err := s.repo.Close(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		logger.FromContext(ctx).Info("invoice closed", zap.String("invoice_id", id))
	}
	return inv, nil
}

func (s *service) Total(ctx context.Context, id string) (decimal.Decimal, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.Total(), nil
}
