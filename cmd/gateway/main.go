package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"portico/pkg/audit"
	"portico/pkg/banlist"
	"portico/pkg/eventbus"
	"portico/pkg/hardening"
	"portico/pkg/httpx"
	"portico/pkg/identity"
	"portico/pkg/metrics"
	"portico/pkg/proxy"
	"portico/pkg/ratelimit"
	"portico/pkg/route"
	"portico/pkg/stream"
	"portico/pkg/store"
	"portico/pkg/telemetry"
)

// Development fallback shared with the backend services. Hardening
// refuses it in production-like environments.
const defaultSecret = "QHZ/5n4Y+AugECPP12uVY/9mWZ14nqEfdiBB8Jo6//g"

type auditRecorder interface {
	Record(e audit.Entry) bool
}

type logReader interface {
	Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}

// Server carries the per-request pipeline: ban check, dual-ceiling rate
// limit, soft identity, route resolution, forward, audit.
type Server struct {
	Bans      banlist.Store
	Routes    *route.Table
	Forwarder *proxy.Forwarder
	Logs      logReader
	Recorder  auditRecorder
	Metrics   *metrics.Registry
	Events    *stream.Hub

	RateLimitEnabled bool
	Global           ratelimit.Limiter
	PerRoute         ratelimit.Limiter
	GlobalLimit      int
	RouteLimit       int
	GlobalWindow     time.Duration
	RouteWindow      time.Duration

	Secret              string
	AuditRejected       bool
	TrustedProxyCIDRs   []*net.IPNet
	MaxRequestBodyBytes int64
	CORSOrigins         string
	WSOrigins           string
}

type ctxKey int

const identityCtxKey ctxKey = iota

type gatewayInitTelemetryFunc func(ctx context.Context, service string) (func(context.Context) error, error)
type gatewayOpenDBFunc func(ctx context.Context) (auditDBCloser, error)
type gatewayOpenRedisFunc func(ctx context.Context) (*redis.Client, error)
type gatewayListenFunc func(server *http.Server) error

type auditDBCloser interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

var (
	initTelemetryG = telemetry.Init
	openDBFnG      = func(ctx context.Context) (auditDBCloser, error) { return store.NewPostgresPool(ctx) }
	openRedisFnG   = store.NewRedis
	listenFnG      = func(server *http.Server) error { return server.ListenAndServe() }
	logFatalf      = log.Fatalf
)

func main() {
	if err := runGateway(initTelemetryG, openDBFnG, openRedisFnG, listenFnG); err != nil {
		logFatalf("gateway: %v", err)
	}
}

func runGateway(
	initTelemetry gatewayInitTelemetryFunc,
	openDB gatewayOpenDBFunc,
	openRedis gatewayOpenRedisFunc,
	listen gatewayListenFunc,
) error {
	ctx := context.Background()
	shutdown, err := initTelemetry(ctx, "gateway")
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	pool, err := openDB(ctx)
	if err != nil {
		return fmt.Errorf("audit db: %w", err)
	}
	defer pool.Close()
	writer := &audit.Writer{DB: pool}
	ctxInit, cancelInit := context.WithTimeout(ctx, 10*time.Second)
	err = writer.Init(ctxInit)
	cancelInit()
	if err != nil {
		return fmt.Errorf("audit schema: %w", err)
	}

	redisClient, err := openRedis(ctx)
	if err != nil {
		log.Printf("redis unavailable, using in-memory ban list and counters: %v", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	secret := env("SECRET_KEY", defaultSecret)
	globalWindow := envDurationSec("GLOBAL_RATE_WINDOW_SEC", 3600)
	routeWindow := envDurationSec("ROUTE_RATE_WINDOW_SEC", 60)
	maxBody := int64(envInt("MAX_REQUEST_BODY_BYTES", 1<<20))
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	if err := hardening.ValidateProduction(hardening.Options{
		Service:               "gateway",
		Environment:           env("ENVIRONMENT", env("APP_ENV", "")),
		StrictProdSecurity:    env("STRICT_PROD_SECURITY", "true"),
		SigningSecret:         secret,
		DefaultSigningSecret:  defaultSecret,
		DatabaseRequireTLS:    env("DATABASE_REQUIRE_TLS", ""),
		RedisAddr:             env("REDIS_ADDR", ""),
		RedisRequireTLS:       env("REDIS_REQUIRE_TLS", ""),
		RedisTLSInsecure:      env("REDIS_TLS_INSECURE", ""),
		RedisAllowInsecureTLS: env("REDIS_ALLOW_INSECURE_TLS", ""),
		CORSAllowedOrigins:    env("CORS_ALLOWED_ORIGINS", ""),
	}); err != nil {
		return err
	}

	events := stream.NewHub()
	hooks := []func(audit.Entry){
		func(e audit.Entry) { events.Publish(stream.NewEvent("audit", e)) },
	}
	var bus *eventbus.Publisher
	if brokers := splitList(env("AUDIT_KAFKA_BROKERS", "")); len(brokers) > 0 {
		bus, err = eventbus.NewPublisher(eventbus.Config{
			Brokers: brokers,
			Topic:   env("AUDIT_KAFKA_TOPIC", "portico.audit"),
		})
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer func() { _ = bus.Close() }()
		hooks = append(hooks, func(e audit.Entry) { bus.Publish(e.ClientIP, e) })
	}
	recorder := audit.NewRecorder(writer, envInt("AUDIT_BUFFER_SIZE", 1024), hooks...)
	recorderCtx, recorderCancel := context.WithCancel(ctx)
	go recorder.Run(recorderCtx)
	defer func() {
		recorderCancel()
		select {
		case <-recorder.Done():
		case <-time.After(5 * time.Second):
			log.Printf("audit recorder drain timed out")
		}
	}()

	var bans banlist.Store
	if redisClient != nil {
		bans = banlist.NewRedis(redisClient)
	} else {
		bans = banlist.NewMemory()
	}

	s := &Server{
		Bans: bans,
		Routes: route.NewTable(
			route.Rule{Prefix: "/auth/", Name: "auth_service", BaseURL: env("AUTH_SERVICE_URL", "http://localhost:5001"), Class: "auth"},
			route.Rule{Prefix: "/user/", Name: "user_service", BaseURL: env("USER_SERVICE_URL", "http://localhost:5002"), Class: "user"},
			route.Rule{Prefix: "/task/", Name: "task_service", BaseURL: env("TASK_SERVICE_URL", "http://localhost:5003"), Class: "task"},
			route.Rule{Prefix: "/logs", Name: "gateway", Class: "logs", Local: true},
		),
		Forwarder: &proxy.Forwarder{
			Client: telemetry.InstrumentClient(&http.Client{
				Timeout: time.Millisecond * time.Duration(envInt("UPSTREAM_TIMEOUT_MS", 3000)),
			}),
		},
		Logs:                writer,
		Recorder:            recorder,
		Metrics:             metrics.NewRegistry(),
		Events:              events,
		RateLimitEnabled:    env("RATE_LIMIT_ENABLED", "true") == "true",
		GlobalLimit:         envInt("GLOBAL_RATE_LIMIT", 50),
		RouteLimit:          envInt("ROUTE_RATE_LIMIT", 30),
		GlobalWindow:        globalWindow,
		RouteWindow:         routeWindow,
		Secret:              secret,
		AuditRejected:       env("AUDIT_REJECTED_REQUESTS", "true") == "true",
		TrustedProxyCIDRs:   parseCIDRs(env("TRUSTED_PROXY_CIDRS", "")),
		MaxRequestBodyBytes: maxBody,
		CORSOrigins:         env("CORS_ALLOWED_ORIGINS", ""),
		WSOrigins:           env("WS_ALLOWED_ORIGINS", ""),
	}
	if s.RateLimitEnabled {
		if redisClient != nil {
			s.Global = ratelimit.NewRedis(redisClient, globalWindow)
			s.PerRoute = ratelimit.NewRedis(redisClient, routeWindow)
		} else {
			s.Global = ratelimit.NewInMemory(globalWindow)
			s.PerRoute = ratelimit.NewInMemory(routeWindow)
		}
	}

	addr := env("GATEWAY_ADDR", ":8080")
	log.Printf("gateway listening on %s", addr)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: envDurationSec("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		ReadTimeout:       envDurationSec("HTTP_READ_TIMEOUT_SEC", 15),
		WriteTimeout:      envDurationSec("HTTP_WRITE_TIMEOUT_SEC", 30),
		IdleTimeout:       envDurationSec("HTTP_IDLE_TIMEOUT_SEC", 120),
	}
	if listen == nil {
		return errors.New("listen function required")
	}
	return listen(server)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.CORSMiddleware(s.CORSOrigins))
	r.Use(httpx.SecurityHeadersMiddleware)
	r.Use(s.observeMiddleware)
	r.Use(telemetry.HTTPMiddleware("gateway"))
	r.Use(httpx.MaxBodyMiddleware(s.MaxRequestBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "gateway"})
	})
	r.Get("/metrics", s.Metrics.Handler())
	r.Get("/metrics/prometheus", s.Metrics.PrometheusHandler())

	r.Group(func(g chi.Router) {
		g.Use(s.admissionMiddleware)
		g.Get("/logs", s.handleLogs)
		g.Get("/logs/stream", s.streamAudit)
		g.HandleFunc("/*", s.dispatch)
	})
	return r
}

// admissionMiddleware runs the pre-dispatch checks in order: ban list,
// global ceiling, route-class ceiling, then soft identity. Identity is
// resolved last because it never influences the verdict.
func (s *Server) admissionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := s.clientIP(r)
		if s.isBanned(r.Context(), ip) {
			s.Metrics.IncAdmission("banned")
			httpx.WriteJSON(w, http.StatusForbidden, map[string]interface{}{
				"error":      "client is banned",
				"statusCode": http.StatusForbidden,
			})
			s.auditRejection(r, http.StatusForbidden)
			return
		}
		if ceiling, decision, limited := s.checkRateLimit(r.URL.Path, ip); limited {
			s.Metrics.IncAdmission("rate_limited_" + ceiling)
			window := s.RouteWindow
			if ceiling == "global" {
				window = s.GlobalWindow
			}
			retry := decision.RetryAfter(time.Now().UTC())
			retrySecs := int(retry.Seconds())
			if retry > time.Duration(retrySecs)*time.Second {
				retrySecs++
			}
			w.Header().Set("Retry-After", strconv.Itoa(retrySecs))
			httpx.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error":      "rate limit exceeded",
				"message":    fmt.Sprintf("request ceiling for %s reached (%d per %s), try again later", ceiling, decision.Limit, window),
				"statusCode": http.StatusTooManyRequests,
			})
			s.auditRejection(r, http.StatusTooManyRequests)
			return
		}
		s.Metrics.IncAdmission("admitted")
		id := identity.Resolve(r.Header.Get("Authorization"), s.Secret, time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityCtxKey, id)))
	})
}

// isBanned fails open: a degraded ban store admits the request and logs.
func (s *Server) isBanned(ctx context.Context, ip string) bool {
	if s.Bans == nil {
		return false
	}
	banned, err := s.Bans.IsBanned(ctx, ip)
	if err != nil {
		log.Printf("ban list degraded, admitting %s: %v", ip, err)
		return false
	}
	return banned
}

// checkRateLimit applies the global ceiling first, then the ceiling of
// the route class the path resolves to. A request passes only when both
// counters stay at or under their limits.
func (s *Server) checkRateLimit(path, ip string) (string, ratelimit.Decision, bool) {
	if !s.RateLimitEnabled {
		return "", ratelimit.Decision{}, false
	}
	if s.Global != nil && s.GlobalLimit > 0 {
		if d := s.Global.Allow("global:"+ip, s.GlobalLimit); !d.Allowed {
			return "global", d, true
		}
	}
	if s.PerRoute != nil && s.RouteLimit > 0 {
		if rule, ok := s.Routes.Resolve(path); ok && rule.Class != "" {
			if d := s.PerRoute.Allow(rule.Class+":"+ip, s.RouteLimit); !d.Allowed {
				return rule.Class, d, true
			}
		}
	}
	return "", ratelimit.Decision{}, false
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	label := identityLabel(r.Context())
	rule, ok := s.Routes.Resolve(r.URL.Path)
	if !ok || rule.Local {
		httpx.Error(w, http.StatusNotFound, "no route for path")
		s.record(r, http.StatusNotFound, time.Since(start), audit.OutcomeRejected, "unknown_service", label)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		msg := "invalid request body"
		if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
			status = http.StatusRequestEntityTooLarge
			msg = "request body too large"
		}
		httpx.Error(w, status, msg)
		s.record(r, status, time.Since(start), audit.OutcomeRejected, rule.Name, label)
		return
	}
	res, err := s.Forwarder.Forward(r.Context(), r.Method, rule.BaseURL, rule.Rest(r.URL.Path), r.URL.RawQuery, r.Header, body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away mid-flight; nothing left to answer.
			return
		}
		status, msg, class := translateForwardError(err)
		s.Metrics.IncBackendError(class)
		httpx.Error(w, status, msg)
		s.record(r, status, time.Since(start), audit.OutcomeError, rule.Name, label)
		return
	}
	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
	s.record(r, res.Status, time.Since(start), audit.OutcomeForwarded, rule.Name, label)
}

func translateForwardError(err error) (int, string, string) {
	switch {
	case errors.Is(err, proxy.ErrTimeout):
		return http.StatusGatewayTimeout, "backend timeout", "timeout"
	case errors.Is(err, proxy.ErrMalformed):
		return http.StatusBadGateway, "backend returned a malformed response", "malformed"
	default:
		return http.StatusBadGateway, "backend unreachable", "unreachable"
	}
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.Logs == nil {
		httpx.Error(w, http.StatusInternalServerError, "audit store unavailable")
		return
	}
	q := r.URL.Query()
	f := audit.Filter{
		Identity: strings.TrimSpace(q.Get("user")),
		Route:    strings.TrimSpace(q.Get("route")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		f.Status = n
	}
	start, err := parseLogTime(q.Get("start_date"), false)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid start_date filter")
		return
	}
	f.Start = start
	end, err := parseLogTime(q.Get("end_date"), true)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid end_date filter")
		return
	}
	f.End = end
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Limit = n
		}
	}
	entries, err := s.Logs.Query(r.Context(), f)
	if err != nil {
		log.Printf("audit query failed: %v", err)
		httpx.Error(w, http.StatusInternalServerError, "audit query failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statusCode": http.StatusOK,
		"data":       entries,
	})
}

// parseLogTime accepts RFC 3339 or a bare date. A bare end date is
// inclusive, covering the whole day.
func parseLogTime(raw string, end bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (s *Server) streamAudit(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "stream unavailable")
		return
	}
	opts := &websocket.AcceptOptions{}
	if origins := splitList(s.WSOrigins); len(origins) > 0 {
		opts.OriginPatterns = origins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		return
	}
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub := s.Events.Subscribe(64)
	defer s.Events.Unsubscribe(sub)

	_ = wsjson.Write(ctx, conn, stream.NewEvent("ready", nil))
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				readErr <- err
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case <-readErr:
			_ = conn.Close(websocket.StatusNormalClosure, "closed")
			return
		case evt, ok := <-sub:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, evt)
			cancelWrite()
			if err != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
				return
			}
		}
	}
}

// auditRejection records requests turned away at admission. Whether
// rejected traffic reaches the trail at all is configurable.
func (s *Server) auditRejection(r *http.Request, status int) {
	if !s.AuditRejected {
		return
	}
	backend := "unknown_service"
	if rule, ok := s.Routes.Resolve(r.URL.Path); ok {
		backend = rule.Name
	}
	id := identity.Resolve(r.Header.Get("Authorization"), s.Secret, time.Now().UTC())
	s.record(r, status, 0, audit.OutcomeRejected, backend, id.Label)
}

func (s *Server) record(r *http.Request, status int, latency time.Duration, outcome, backend, label string) {
	if s.Recorder == nil {
		return
	}
	s.Recorder.Record(audit.Entry{
		ID:            uuid.New().String(),
		Route:         r.URL.Path,
		Backend:       backend,
		Method:        r.Method,
		Status:        status,
		LatencyMillis: latency.Milliseconds(),
		Identity:      label,
		ClientIP:      s.clientIP(r),
		Outcome:       outcome,
		CreatedAt:     time.Now().UTC(),
	})
}

func identityLabel(ctx context.Context) string {
	if id, ok := ctx.Value(identityCtxKey).(identity.Identity); ok && id.Label != "" {
		return id.Label
	}
	return identity.LabelAnonymous
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.code = statusCode
	s.ResponseWriter.WriteHeader(statusCode)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: 200}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		class := s.routeClass(r.URL.Path)
		s.Metrics.Observe(class, rec.code, elapsed)
		s.Metrics.ObserveLatency(class, elapsed)
		logAccess(r, rec.code, elapsed)
	})
}

func (s *Server) routeClass(path string) string {
	if rule, ok := s.Routes.Resolve(path); ok && rule.Class != "" {
		return rule.Class
	}
	return "other"
}

func logAccess(r *http.Request, status int, elapsed time.Duration) {
	level := "INFO"
	switch {
	case status >= 500:
		level = "ERROR"
	case status >= 400:
		level = "WARN"
	}
	log.Printf("%s %s %s -> %d (%s)", level, r.Method, r.URL.Path, status, elapsed.Round(time.Millisecond))
}

func (s *Server) clientIP(r *http.Request) string {
	remoteIP := parseIP(r.RemoteAddr)
	if remoteIP == "" {
		remoteIP = r.RemoteAddr
	}
	if remoteIP != "" && s.isTrustedProxy(remoteIP) {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				if candidate := parseIP(strings.TrimSpace(parts[0])); candidate != "" {
					return candidate
				}
			}
		}
		if realIP := parseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); realIP != "" {
			return realIP
		}
	}
	if remoteIP == "" {
		return "unknown"
	}
	return remoteIP
}

func (s *Server) isTrustedProxy(ipStr string) bool {
	if len(s.TrustedProxyCIDRs) == 0 {
		return false
	}
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return false
	}
	for _, cidr := range s.TrustedProxyCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

func parseIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if net.ParseIP(addr) != nil {
		return addr
	}
	return ""
}

func parseCIDRs(raw string) []*net.IPNet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]*net.IPNet, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			if _, cidr, err := net.ParseCIDR(part); err == nil {
				out = append(out, cidr)
			}
			continue
		}
		ip := net.ParseIP(part)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDurationSec(k string, def int) time.Duration {
	d := time.Second * time.Duration(envInt(k, def))
	if d <= 0 {
		d = time.Second * time.Duration(def)
	}
	return d
}
