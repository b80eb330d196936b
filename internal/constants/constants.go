package constants

import "time"

var DeckLimits = struct {
	MaxTitleLength     int
	MaxSlideCount      int
	MaxBulletsPerSlide int
}{
	MaxTitleLength:     120,
	MaxSlideCount:      40,
	MaxBulletsPerSlide: 12,
}

var GenerationDefaults = struct {
	Temperature     float64
	MaxOutputTokens int
}{
	Temperature:     0.35,
	MaxOutputTokens: 3000,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // circuit opens after 3 consecutive failures
	ResetTimeout:        30 * time.Second, // default wait before HALF_OPEN probe
	RateLimitTimeout:    1 * time.Hour,    // longer wait after 429 responses
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var SweepConfig = struct {
	MaxWorkers int
	BatchLimit int
}{
	MaxWorkers: 4,
	BatchLimit: 256,
}

var WebSocketConfig = struct {
	WriteTimeout time.Duration
	SendBuffer   int
}{
	WriteTimeout: 10 * time.Second,
	SendBuffer:   16,
}

var HistoryConfig = struct {
	DefaultLimit  int
	MaxLimit      int
	PromptSnippet int
}{
	DefaultLimit:  20,
	MaxLimit:      100,
	PromptSnippet: 300, // stored prompt excerpt length
}
