// Package status serves a small HTTP health and status API next to the bot.
package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/datastore"
	"github.com/sudosnok/owopondbot/internal/imagesource"
)

// Bot is the runtime state the status page reports.
type Bot interface {
	Ready() bool
	Latency() time.Duration
	GuildCount() int
}

// Sources supply the numbers shown on /status. Nil fields are left out.
type Sources struct {
	Bot      Bot
	Resolver func() imagesource.Stats
	Store    func() datastore.Stats
	Jobs     func() []string
	Started  time.Time
}

// Report is the /status body.
type Report struct {
	Ready     bool               `json:"ready"`
	LatencyMS int64              `json:"latency_ms"`
	Guilds    int                `json:"guilds"`
	Uptime    string             `json:"uptime"`
	Jobs      []string           `json:"jobs"`
	Resolver  *imagesource.Stats `json:"resolver,omitempty"`
	Store     *datastore.Stats   `json:"store,omitempty"`
}

func (s Sources) report() Report {
	r := Report{Jobs: []string{}}
	if s.Bot != nil {
		r.Ready = s.Bot.Ready()
		r.LatencyMS = s.Bot.Latency().Milliseconds()
		r.Guilds = s.Bot.GuildCount()
	}
	if !s.Started.IsZero() {
		r.Uptime = time.Since(s.Started).Truncate(time.Second).String()
	}
	if s.Jobs != nil {
		if jobs := s.Jobs(); jobs != nil {
			r.Jobs = jobs
		}
	}
	if s.Resolver != nil {
		st := s.Resolver()
		r.Resolver = &st
	}
	if s.Store != nil {
		st := s.Store()
		r.Store = &st
	}
	return r
}

// Router builds the gin engine serving /healthz and /status.
func Router(src Sources) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(), gin.CustomRecovery(handlePanics))

	r.GET("/healthz", func(c *gin.Context) {
		if src.Bot != nil && !src.Bot.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, src.report())
	})
	return r
}

// Run serves the status API on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, src Sources) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(src),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("status server shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("status request")
	}
}

func handlePanics(c *gin.Context, recovered any) {
	log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("status handler panicked")
	c.AbortWithStatus(http.StatusInternalServerError)
}
