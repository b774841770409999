package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitergin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	bookingHttp "github.com/nekogravitycat/coworking-ledger/internal/booking/http"
	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	invoiceHttp "github.com/nekogravitycat/coworking-ledger/internal/invoice/http"
	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	ledgerHttp "github.com/nekogravitycat/coworking-ledger/internal/ledger/http"
	"github.com/nekogravitycat/coworking-ledger/internal/member"
	memberHttp "github.com/nekogravitycat/coworking-ledger/internal/member/http"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/logger"
	"github.com/nekogravitycat/coworking-ledger/internal/report"
	reportHttp "github.com/nekogravitycat/coworking-ledger/internal/report/http"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
	roomHttp "github.com/nekogravitycat/coworking-ledger/internal/room/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	RateLimit      string // ulule formatted rate, e.g. "120-M"; empty disables limiting
	Logger         *zap.Logger
	ReportDefaults reportHttp.Defaults

	MemberService  member.Service
	RoomService    room.Service
	BookingService booking.Service
	InvoiceService invoice.Service
	LedgerService  ledger.Service
	ReportService  report.Service
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request logging, recovery, CORS, rate limiting) and
// registers the routes of every module under /v1.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: request-scoped zap logger with a request ID.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.GinMiddleware(log), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	if len(corsConfig.AllowOrigins) > 0 || corsConfig.AllowAllOrigins {
		r.Use(cors.New(corsConfig))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	if cfg.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit %q: %w", cfg.RateLimit, err)
		}
		v1.Use(limitergin.NewMiddleware(limiter.New(memory.NewStore(), rate)))
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	memberHandler := memberHttp.NewHandler(cfg.MemberService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	invoiceHandler := invoiceHttp.NewHandler(cfg.InvoiceService)
	ledgerHandler := ledgerHttp.NewHandler(cfg.LedgerService)
	reportHandler := reportHttp.NewHandler(cfg.ReportService, cfg.LedgerService, cfg.ReportDefaults)

	memberHttp.RegisterRoutes(v1, memberHandler)
	roomHttp.RegisterRoutes(v1, roomHandler)
	bookingHttp.RegisterRoutes(v1, bookingHandler)
	invoiceHttp.RegisterRoutes(v1, invoiceHandler)
	ledgerHttp.RegisterRoutes(v1, ledgerHandler)
	reportHttp.RegisterRoutes(v1, reportHandler)

	return r, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
