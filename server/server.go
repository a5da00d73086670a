// Package server exposes extraction and translation jobs over an HTTP API
// with per-job progress streaming.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/oversea-labs/oversea"
	"github.com/oversea-labs/oversea/config"
)

// PageExtractor turns a product URL into a structured document.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (*oversea.Document, error)
}

// ProductTranslator translates an extracted product document.
type ProductTranslator interface {
	TranslateProductData(ctx context.Context, doc *oversea.Document) (*oversea.ProductResult, error)
}

// TranslatorFactory builds a translator for one job, wired to the job's
// target language and progress callback.
type TranslatorFactory func(targetLang string, progress oversea.ProgressFunc) ProductTranslator

// Server holds the HTTP API dependencies and routes.
type Server struct {
	cfg           *config.Config
	logger        logrus.FieldLogger
	store         *JobStore
	router        *gin.Engine
	extractor     PageExtractor
	newTranslator TranslatorFactory
}

// NewServer wires the API server. The extractor and translator factory are
// injected so tests can substitute fakes.
func NewServer(cfg *config.Config, logger logrus.FieldLogger, extractor PageExtractor, factory TranslatorFactory) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		store:         NewJobStore(),
		router:        gin.New(),
		extractor:     extractor,
		newTranslator: factory,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Run starts the HTTP server on the configured address.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.cfg.Server.Addr).Info("starting API server")
	return s.router.Run(s.cfg.Server.Addr)
}

// Router returns the underlying handler, for tests and custom servers.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/jobs", s.handleCreateJob)
	api.GET("/jobs", s.handleListJobs)
	api.GET("/jobs/:id", s.handleGetJob)
	api.GET("/jobs/:id/events", s.handleJobEvents)
	api.POST("/translate", s.handleTranslate)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": oversea.FullVersion()})
}

type createJobRequest struct {
	URL        string `json:"url" binding:"required"`
	TargetLang string `json:"target_lang"`
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	if req.TargetLang == "" {
		req.TargetLang = s.cfg.Translate.TargetLang
	}

	job := s.store.Create(req.URL, req.TargetLang)
	jobsCreated.Inc()

	go s.runJob(job.ID, req.URL, req.TargetLang)

	c.JSON(http.StatusAccepted, job)
}

func (s *Server) handleListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": s.store.List()})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// handleJobEvents streams job status and translation progress as
// server-sent events until the job reaches a terminal state or the client
// disconnects.
func (s *Server) handleJobEvents(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	events, unsubscribe := s.store.Subscribe(id)
	defer unsubscribe()

	// Snapshot after subscribing: a job that turns terminal in between
	// is caught here instead of slipping its last event past the stream.
	job, _ := s.store.Get(id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Send the current state first so late subscribers are not blind.
	c.SSEvent("status", JobEvent{JobID: job.ID, Status: job.Status, Error: job.Error})
	c.Writer.Flush()
	if isTerminal(job.Status) {
		return
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			name := "status"
			if event.Progress != nil {
				name = "progress"
			}
			c.SSEvent(name, event)
			return !isTerminal(event.Status) || event.Progress != nil
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type translateRequest struct {
	Data       json.RawMessage `json:"data" binding:"required"`
	TargetLang string          `json:"target_lang"`
}

// handleTranslate translates a caller-supplied product document
// synchronously, without creating a job.
func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data is required"})
		return
	}

	doc, err := oversea.ParseDocument(req.Data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data must be a JSON object"})
		return
	}
	targetLang := req.TargetLang
	if targetLang == "" {
		targetLang = s.cfg.Translate.TargetLang
	}

	translator := s.newTranslator(targetLang, nil)
	result, err := translator.TranslateProductData(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	recordReport(result.Report)
	c.JSON(http.StatusOK, gin.H{"data": result.Data, "report": result.Report})
}

// runJob drives one job through extraction and translation. Failures mark
// the job failed instead of propagating; partial translations still
// complete with their misses reported.
func (s *Server) runJob(id, url, targetLang string) {
	started := time.Now()
	log := s.logger.WithFields(logrus.Fields{"job": id, "url": url})
	ctx := context.Background()

	s.store.Update(id, func(j *Job) { j.Status = JobExtracting })

	extracted, err := s.extractor.Extract(ctx, url)
	if err != nil {
		log.WithError(err).Error("extraction failed")
		s.failJob(id, started, err)
		return
	}

	s.store.Update(id, func(j *Job) {
		j.Status = JobExtracted
		j.Extracted = extracted
	})

	s.store.Update(id, func(j *Job) { j.Status = JobTranslating })

	progress := func(event oversea.ProgressEvent) {
		s.store.PublishProgress(id, JobTranslating, event)
	}
	translator := s.newTranslator(targetLang, progress)

	result, err := translator.TranslateProductData(ctx, extracted)
	if err != nil {
		log.WithError(err).Error("translation failed")
		s.failJob(id, started, err)
		return
	}

	s.store.Update(id, func(j *Job) {
		j.Status = JobCompleted
		j.Translated = result.Data
		j.Report = &result.Report
	})

	recordReport(result.Report)
	jobsCompleted.WithLabelValues(string(JobCompleted)).Inc()
	jobDuration.Observe(time.Since(started).Seconds())
	log.WithFields(logrus.Fields{
		"translated": result.Report.TranslatedCount,
		"missed":     result.Report.MissedCount,
		"duration":   time.Since(started).Round(time.Millisecond),
	}).Info("job completed")
}

func (s *Server) failJob(id string, started time.Time, err error) {
	s.store.Update(id, func(j *Job) {
		j.Status = JobFailed
		j.Error = err.Error()
	})
	jobsCompleted.WithLabelValues(string(JobFailed)).Inc()
	jobDuration.Observe(time.Since(started).Seconds())
}

func isTerminal(status JobStatus) bool {
	return status == JobCompleted || status == JobFailed
}
