// Package http wires the REST surface: routing, auth middleware, the login
// rate-limit gate, and per-area handlers.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dibyam12/SMS-backend/internal/auth"
	"github.com/dibyam12/SMS-backend/internal/config"
	"github.com/dibyam12/SMS-backend/internal/model"
	"github.com/dibyam12/SMS-backend/internal/ratelimit"
	"github.com/dibyam12/SMS-backend/internal/repository"
	"github.com/dibyam12/SMS-backend/internal/service"
)

type Server struct {
	cfg     config.Config
	store   *repository.Store
	authSvc *service.Auth
	issuer  *auth.Issuer
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

func NewServer(cfg config.Config, store *repository.Store, authSvc *service.Auth, issuer *auth.Issuer, limiter *ratelimit.Limiter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		store:   store,
		authSvc: authSvc,
		issuer:  issuer,
		limiter: limiter,
		logger:  logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.With(s.loginRateLimit).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/refresh-token", s.handleRefresh)

		r.With(s.authMiddleware).Get("/me", s.handleGetMe)
		r.With(s.authMiddleware).Patch("/me", s.handleUpdateMe)
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(s.authMiddleware, s.requireStaffAdmin).Get("/users", s.handleListUsersByRole)
	})

	r.Route("/student", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleCreateStudent)
		r.Get("/", s.handleListStudentsByClass)
		r.Get("/{studentId}", s.handleGetStudent)
		r.Patch("/{studentId}", s.handlePatchStudent)
		r.Delete("/{studentId}", s.handleDeleteStudent)
		r.Post("/{studentId}/enrollment", s.handleEnrollStudent)
	})

	r.Route("/parent", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleCreateParent)
		r.Get("/student/{studentId}", s.handleGetParentsForStudent)
		r.Get("/{parentId}", s.handleGetParent)
		r.Patch("/{parentId}", s.handlePatchParent)
		r.Delete("/{parentId}", s.handleDeleteParent)
		r.Get("/{parentId}/students", s.handleGetStudentsForParent)
		r.Post("/{parentId}/students", s.handleLinkParentStudent)
		r.Delete("/{parentId}/students/{studentId}", s.handleUnlinkParentStudent)
	})

	r.Route("/staff", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleCreateStaff)
		r.Get("/", s.handleListStaff)
		r.Get("/{staffId}", s.handleGetStaff)
		r.Patch("/{staffId}", s.handlePatchStaff)
		r.Delete("/{staffId}", s.handleDeleteStaff)
	})

	r.Route("/attendance", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleMarkAttendance)
		r.Patch("/{attendanceId}", s.handlePatchAttendance)
		r.Get("/student/{studentId}", s.handleGetStudentAttendance)
		r.Get("/class", s.handleGetClassAttendance)
		r.Get("/class/summary", s.handleGetClassDailySummary)
	})

	r.Route("/fee", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/head", s.handleCreateFeeHead)
		r.Patch("/head/{headId}", s.handlePatchFeeHead)
		r.Get("/head", s.handleListFeeHeads)
		r.Post("/student", s.handleAssignStudentFee)
		r.Patch("/student/{feeId}", s.handlePatchStudentFee)
		r.Get("/student/{studentId}", s.handleListStudentFees)
		r.Post("/payment", s.handleCreatePayment)
		r.Get("/payment/student/{studentId}", s.handleListPaymentsByStudent)
	})

	r.Route("/notification", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/user", s.handleCreateUserNotification)
		r.Post("/role", s.handleCreateRoleNotification)
		r.Get("/", s.handleListNotifications)
		r.Get("/unread-count", s.handleUnreadCount)
		r.Patch("/{notificationId}/read", s.handleMarkNotificationRead)
		r.Post("/device-token", s.handleUpsertDeviceToken)
		r.Delete("/device-token", s.handleDeleteDeviceToken)
	})

	return r
}

// Middleware

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := s.issuer.Verify(token, auth.KindAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireStaffAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || (claims.Role != "admin" && claims.Role != "principal") {
			writeError(w, http.StatusForbidden, "admin_only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginRateLimit gates login by client identity. The auth service is never
// invoked for a limited request.
func (s *Server) loginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.limiter.Allow(r.Context(), clientIP(r)); err != nil {
			if err == ratelimit.ErrRateLimited {
				rateLimitedTotal.Inc()
				writeError(w, http.StatusTooManyRequests, "too_many_requests")
				return
			}
			// Counter backend failure: let the request through rather than
			// lock every client out.
			s.logger.Warn("rate limit check failed", zap.Error(err))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// requireStaff answers 403 and returns false unless the caller holds a staff
// role. Parent and student accounts read their own data but never manage
// records.
func (s *Server) requireStaff(w http.ResponseWriter, r *http.Request) bool {
	claims := claimsFromContext(r.Context())
	if claims != nil {
		if role, ok := model.ParseRole(claims.Role); ok && role.IsStaffRole() {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "staff_only")
	return false
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func (s *Server) internalError(w http.ResponseWriter, operation string, err error) {
	s.logger.Error(operation+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error")
}

// lookupError maps a missing row to 404 and anything else to 500.
func (s *Server) lookupError(w http.ResponseWriter, operation string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	s.internalError(w, operation, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.GetHealthSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}

	tables := make([]map[string]interface{}, 0, len(summary.Tables))
	for _, table := range summary.Tables {
		tables = append(tables, map[string]interface{}{"table": table.Table, "count": table.Count})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": summary.Status,
		"db": map[string]interface{}{
			"name":        summary.DBName,
			"version":     summary.DBVersion,
			"server_time": summary.ServerTime,
		},
		"tables": tables,
	})
}
