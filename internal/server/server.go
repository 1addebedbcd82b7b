package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/pillbox/internal/backup"
	"github.com/dukerupert/pillbox/internal/cabinet"
	"github.com/dukerupert/pillbox/internal/handler"
	"github.com/dukerupert/pillbox/internal/middleware"
)

type Server struct {
	db          *sql.DB
	categoryH   *handler.CategoryHandler
	medicineH   *handler.MedicineHandler
	stockH      *handler.StockHandler
	reminderH   *handler.ReminderHandler
	historyH    *handler.HistoryHandler
	backupH     *handler.BackupHandler
	rateLimiter *middleware.RateLimiter
	rateLimit   int
	proxies     *middleware.IPResolver
	logger      *slog.Logger
}

// New wires the HTTP handlers. rateLimit is the number of mutating requests
// allowed per client IP per minute; zero disables limiting. Client IPs are
// taken from forwarding headers only when proxies trusts the peer.
func New(db *sql.DB, svc *cabinet.Service, backups *backup.Manager, rateLimit int, proxies *middleware.IPResolver, logger *slog.Logger) *Server {
	return &Server{
		db:          db,
		categoryH:   handler.NewCategoryHandler(svc, logger.With("component", "category")),
		medicineH:   handler.NewMedicineHandler(svc, logger.With("component", "medicine")),
		stockH:      handler.NewStockHandler(svc, logger.With("component", "stock")),
		reminderH:   handler.NewReminderHandler(svc, logger.With("component", "reminder")),
		historyH:    handler.NewHistoryHandler(svc, logger.With("component", "history")),
		backupH:     handler.NewBackupHandler(backups, logger.With("component", "backup_handler")),
		rateLimiter: middleware.NewRateLimiter(),
		rateLimit:   rateLimit,
		proxies:     proxies,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/status", s.historyH.Status)

	// Categories
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/add_category", s.limited(s.categoryH.Add))
	mux.HandleFunc("POST /api/remove_category", s.limited(s.categoryH.Remove))

	// Medicines
	mux.HandleFunc("GET /api/medicines", s.medicineH.List)
	mux.HandleFunc("POST /api/add_medicine", s.limited(s.medicineH.Add))
	mux.HandleFunc("POST /api/delete_medicine", s.limited(s.medicineH.Delete))
	mux.HandleFunc("GET /api/search_medicine", s.medicineH.Search)
	mux.HandleFunc("POST /api/search_medicine", s.medicineH.Search)
	mux.HandleFunc("GET /api/medicines_by_category", s.medicineH.ByCategory)
	mux.HandleFunc("POST /api/medicines_by_category", s.medicineH.ByCategory)

	// Stock
	mux.HandleFunc("GET /api/stock_levels", s.stockH.Levels)
	mux.HandleFunc("POST /api/add_medicine_with_stock", s.limited(s.stockH.AddMedicineWithStock))
	mux.HandleFunc("POST /api/update_stock", s.limited(s.stockH.Update))
	mux.HandleFunc("POST /api/decrease_stock", s.limited(s.stockH.Decrease))
	mux.HandleFunc("GET /api/low_stock_alerts", s.stockH.LowStockAlerts)
	mux.HandleFunc("GET /api/check_stock", s.stockH.Check)
	mux.HandleFunc("POST /api/check_stock", s.stockH.Check)

	// Reminders and the dosing queue
	mux.HandleFunc("GET /api/reminders", s.reminderH.List)
	mux.HandleFunc("POST /api/schedule_reminder", s.limited(s.reminderH.Schedule))
	mux.HandleFunc("POST /api/delete_reminder", s.limited(s.reminderH.Delete))
	mux.HandleFunc("GET /api/next_reminder", s.reminderH.Next)
	mux.HandleFunc("GET /api/reminder_queue", s.reminderH.Queue)
	mux.HandleFunc("POST /api/mark_taken", s.limited(s.reminderH.MarkTaken))
	mux.HandleFunc("POST /api/refill_queue", s.limited(s.reminderH.Refill))

	// History
	mux.HandleFunc("GET /api/history", s.historyH.List)
	mux.HandleFunc("POST /api/undo", s.limited(s.historyH.Undo))

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backup", s.limited(s.backupH.Run))
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	return middleware.Chain(
		middleware.RequestID,
		middleware.RequestLogger(s.logger.With("component", "http")),
		middleware.Recovery(s.logger.With("component", "http")),
	)(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	if s.rateLimit <= 0 {
		return h
	}
	rl := middleware.RateLimit(s.rateLimiter, s.proxies.ClientIP, s.rateLimit, time.Minute)
	return rl(h).ServeHTTP
}
