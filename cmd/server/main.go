package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	"github.com/rotsutc/go_hash_avalanche/internal/adapters/digest"
	coreavalanche "github.com/rotsutc/go_hash_avalanche/internal/core/avalanche"
	"github.com/rotsutc/go_hash_avalanche/internal/core/domain"
	"github.com/rotsutc/go_hash_avalanche/pkg/avalanche"
	"github.com/rotsutc/go_hash_avalanche/pkg/compare"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

var (
	// Sequence comparator
	comparator *compare.Comparator

	// Record aggregator (client-supplied records)
	aggregator *avalanche.Aggregator

	// End-to-end analyzer (server-computed records)
	analyzer *avalanche.Analyzer

	// Logger instance
	logger l.Logger
)

// CompareRequest asks for similarity and alignment of an input pair.
type CompareRequest struct {
	Original string `json:"original"`
	Modified string `json:"modified"`
}

// AvalancheRequest carries pre-computed digest diff records.
type AvalancheRequest struct {
	Records []DiffRecord `json:"records"`
}

// DiffRecord is the wire form of a digest diff record.
type DiffRecord struct {
	Algorithm      string `json:"algorithm"`
	OriginalDigest string `json:"original_digest,omitempty"`
	ModifiedDigest string `json:"modified_digest,omitempty"`
	ChangedBits    int    `json:"changed_bits"`
	TotalBits      int    `json:"total_bits"`
}

// CompareResponse is the similarity + alignment payload.
type CompareResponse struct {
	Score          float64                `json:"score"`
	Passed         bool                   `json:"passed"`
	Matches        int                    `json:"matches"`
	OriginalLength int                    `json:"original_length"`
	ModifiedLength int                    `json:"modified_length"`
	Threshold      float64                `json:"threshold"`
	Aligned        AlignedPayload         `json:"aligned"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// AlignedPayload renders both annotated sequences plus the mismatch mask.
type AlignedPayload struct {
	Original   string `json:"original"`
	Modified   string `json:"modified"`
	Mask       string `json:"mask"` // '=' match, 'x' mismatch
	Length     int    `json:"length"`
	Mismatches int    `json:"mismatches"`
}

// ClassificationPayload is the wire form of a per-record judgment.
type ClassificationPayload struct {
	Record           DiffRecord `json:"record"`
	AvalanchePercent float64    `json:"avalanche_percent"`
	Band             string     `json:"band"`
}

// ReportResponse is the aggregated avalanche report payload.
type ReportResponse struct {
	Results              []ClassificationPayload `json:"results"`
	MeanAvalanchePercent float64                 `json:"mean_avalanche_percent"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "TOML config file (overrides the other flags)")
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	config := DefaultServerConfig()
	if *configFile != "" {
		var err error
		config, err = LoadServerConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		config.Port = *port
		config.ReadTimeout = duration{*readTimeout}
		config.WriteTimeout = duration{*writeTimeout}
		config.MaxRequestSize = *maxRequestSize
		config.Concurrency = *concurrency
		config.WarmUp = *warmUp
		config.LogFile = *logFile
	}

	// Set up logger
	var err error
	logger, err = createLogger(config.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting avalanche HTTP server",
		"port", config.Port,
		"read_timeout", config.ReadTimeout.Duration,
		"write_timeout", config.WriteTimeout.Duration,
		"max_request_size", config.MaxRequestSize,
		"concurrency", config.Concurrency,
	)

	// Initialize the engine components
	initEngine(config)

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           config.ReadTimeout.Duration,
		WriteTimeout:          config.WriteTimeout.Duration,
		MaxRequestBodySize:    config.MaxRequestSize,
		Concurrency:           config.Concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxConnsPerIP:         0, // unlimited
		MaxRequestsPerConn:    0, // unlimited
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", fmt.Sprintf(":%d", config.Port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", config.Port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// initEngine initializes the comparator, aggregator and analyzer
func initEngine(config ServerConfig) {
	compareOpts := []compare.Option{
		compare.WithThreshold(config.Comparator.Threshold),
		compare.WithPrecision(config.Comparator.Precision),
		compare.WithLogger(logger),
	}
	if config.Comparator.Placeholder != "" {
		compareOpts = append(compareOpts, compare.WithPlaceholder([]rune(config.Comparator.Placeholder)[0]))
	}
	if config.WarmUp {
		compareOpts = append(compareOpts, compare.WithWarmUp(true))
	}

	var err error
	comparator, err = compare.New(compareOpts...)
	if err != nil {
		logger.Error("Failed to initialize comparator", "error", err)
		os.Exit(1)
	}

	thresholds := coreavalanche.Thresholds{
		PoorLow:  config.Avalanche.PoorLow,
		WarnLow:  config.Avalanche.WarnLow,
		WarnHigh: config.Avalanche.WarnHigh,
		PoorHigh: config.Avalanche.PoorHigh,
	}

	aggregator, err = avalanche.New(
		avalanche.WithThresholds(thresholds),
		avalanche.WithLogger(logger),
	)
	if err != nil {
		logger.Error("Failed to initialize aggregator", "error", err)
		os.Exit(1)
	}

	algorithms := digest.DefaultAlgorithms()
	if len(config.Avalanche.Algorithms) > 0 {
		algorithms, err = digest.ByName(config.Avalanche.Algorithms...)
		if err != nil {
			logger.Error("Failed to resolve algorithms", "error", err)
			os.Exit(1)
		}
	}

	analyzerOpts := []avalanche.AnalyzerOption{
		avalanche.WithAnalyzerThresholds(thresholds),
		avalanche.WithAlgorithms(algorithms),
		avalanche.WithAnalyzerLogger(logger),
	}
	if config.WarmUp {
		analyzerOpts = append(analyzerOpts, avalanche.WithAnalyzerWarmUp(true))
	}

	analyzer, err = avalanche.NewAnalyzer(analyzerOpts...)
	if err != nil {
		logger.Error("Failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	logger.Info("Engine initialized successfully",
		"warm_up", config.WarmUp,
		"algorithms", analyzer.Algorithms(),
		"cpus", runtime.NumCPU(),
	)
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "AvalancheServer")

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/compare":
		handleCompare(ctx)
	case "/avalanche":
		handleAvalanche(ctx)
	case "/analyze":
		handleAnalyze(ctx)
	case "/algorithms":
		handleAlgorithms(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	duration := time.Since(startTime)
	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleAlgorithms lists the configured algorithms
func handleAlgorithms(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, map[string]interface{}{
		"algorithms": analyzer.Algorithms(),
	})
}

// handleCompare handles similarity + alignment requests
func handleCompare(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Compute similarity and alignment
	result := comparator.Similarity(c, req.Original, req.Modified)
	alignment := comparator.Align(c, req.Original, req.Modified)

	response := CompareResponse{
		Score:          result.Score,
		Passed:         result.Passed,
		Matches:        result.Matches,
		OriginalLength: result.OriginalLength,
		ModifiedLength: result.ModifiedLength,
		Threshold:      result.Threshold,
		Aligned:        alignedPayload(alignment),
		Details:        result.Details,
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, response)
}

// handleAvalanche aggregates client-supplied digest diff records
func handleAvalanche(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req AvalancheRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	records := make([]domain.DigestDiffRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = domain.DigestDiffRecord{
			Algorithm:      r.Algorithm,
			OriginalDigest: r.OriginalDigest,
			ModifiedDigest: r.ModifiedDigest,
			ChangedBits:    r.ChangedBits,
			TotalBits:      r.TotalBits,
		}
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := aggregator.Aggregate(c, records)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, err.Error())
		return
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, reportResponse(report))
}

// handleAnalyze computes the records server-side and aggregates them
func handleAnalyze(ctx *fasthttp.RequestCtx) {
	// Only accept POST requests
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	// Parse request
	var req CompareRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	// Create context with timeout
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := analyzer.Analyze(c, req.Original, req.Modified)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, err.Error())
		return
	}

	// Write response
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, reportResponse(report))
}

// Helper functions

// alignedPayload flattens an alignment into display strings
func alignedPayload(a domain.AlignmentResult) AlignedPayload {
	orig := make([]rune, a.Length)
	mod := make([]rune, a.Length)
	mask := make([]rune, a.Length)

	for i := 0; i < a.Length; i++ {
		orig[i] = a.Original[i].Value
		mod[i] = a.Modified[i].Value
		if a.Original[i].Match {
			mask[i] = '='
		} else {
			mask[i] = 'x'
		}
	}

	return AlignedPayload{
		Original:   string(orig),
		Modified:   string(mod),
		Mask:       string(mask),
		Length:     a.Length,
		Mismatches: a.Mismatches,
	}
}

// reportResponse converts a report into its wire form
func reportResponse(report domain.AvalancheReport) ReportResponse {
	results := make([]ClassificationPayload, len(report.Results))
	for i, c := range report.Results {
		results[i] = ClassificationPayload{
			Record: DiffRecord{
				Algorithm:      c.Record.Algorithm,
				OriginalDigest: c.Record.OriginalDigest,
				ModifiedDigest: c.Record.ModifiedDigest,
				ChangedBits:    c.Record.ChangedBits,
				TotalBits:      c.Record.TotalBits,
			},
			AvalanchePercent: c.AvalanchePercent,
			Band:             c.Band.String(),
		}
	}

	return ReportResponse{
		Results:              results,
		MeanAvalanchePercent: report.MeanAvalanchePercent,
	}
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	errResponse := ErrorResponse{
		Error: message,
	}

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// createLogger creates and configures a logger
func createLogger(logFile string) (l.Logger, error) {
	// Create a logger factory
	factory := l.NewStandardFactory()

	// Configure the logger
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	// Create the logger
	logger, err := factory.CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  true,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
