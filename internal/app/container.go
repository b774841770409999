package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/api"
	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/report"
	reportHttp "github.com/nekogravitycat/coworking-ledger/internal/report/http"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
	"github.com/nekogravitycat/coworking-ledger/internal/store/memory"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	RateLimit         string
	RevenueWindowDays int
	TopDuesLimit      int
	// DBPool selects the PostgreSQL backend; nil selects the in-memory store.
	DBPool *pgxpool.Pool
	Logger *zap.Logger
	Clock  clock.Clock
}

// Services groups the domain services, for callers that bypass HTTP.
type Services struct {
	Members  member.Service
	Rooms    room.Service
	Bookings booking.Service
	Invoices invoice.Service
	Ledger   ledger.Service
	Reports  report.Service
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router   *gin.Engine
	Services Services
}

type repositories struct {
	members  member.Repository
	rooms    room.Repository
	bookings booking.Repository
	invoices invoice.Repository
	ledger   ledger.Repository
	reports  report.Repository
}

func pgxRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		members:  member.NewPgxRepository(pool),
		rooms:    room.NewPgxRepository(pool),
		bookings: booking.NewPgxRepository(pool),
		invoices: invoice.NewPgxRepository(pool),
		ledger:   ledger.NewPgxRepository(pool),
		reports:  report.NewPgxRepository(pool),
	}
}

func memoryRepositories(clk clock.Clock) repositories {
	store := memory.New(memory.WithClock(clk))
	return repositories{
		members:  store.Members(),
		rooms:    store.Rooms(),
		bookings: store.Bookings(),
		invoices: store.Invoices(),
		ledger:   store.Ledger(),
		reports:  store.Reports(),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	var repos repositories
	if cfg.DBPool != nil {
		repos = pgxRepositories(cfg.DBPool)
	} else {
		repos = memoryRepositories(clk)
	}

	// Catalog
	memberService := member.NewService(repos.members)
	roomService := room.NewService(repos.rooms)

	// Booking engine
	bookingService := booking.NewService(repos.bookings, clk)

	// Billing
	invoiceService := invoice.NewService(repos.invoices, memberService, clk)
	ledgerService := ledger.NewService(repos.ledger, clk)

	// Dashboard
	reportService := report.NewService(repos.reports)

	services := Services{
		Members:  memberService,
		Rooms:    roomService,
		Bookings: bookingService,
		Invoices: invoiceService,
		Ledger:   ledgerService,
		Reports:  reportService,
	}

	// Router
	router, err := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		RateLimit:    cfg.RateLimit,
		Logger:       cfg.Logger,
		ReportDefaults: reportHttp.Defaults{
			RevenueDays:  cfg.RevenueWindowDays,
			TopDuesLimit: cfg.TopDuesLimit,
		},
		MemberService:  memberService,
		RoomService:    roomService,
		BookingService: bookingService,
		InvoiceService: invoiceService,
		LedgerService:  ledgerService,
		ReportService:  reportService,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Router:   router,
		Services: services,
	}, nil
}
