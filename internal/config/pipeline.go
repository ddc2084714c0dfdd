package config

import (
	"sync"
	"time"
)

type PipelineConfig struct {
	PacingDelay   time.Duration
	MaxUploadSize int64
	// OCRFallback runs tesseract on PDFs without a text layer.
	OCRFallback bool
	// SessionCacheSize caps the batch results and summaries held in memory.
	SessionCacheSize int
}

var (
	pipelineConfig *PipelineConfig
	pipelineOnce   sync.Once
)

func LoadPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		pipelineConfig = &PipelineConfig{
			PacingDelay:   envDuration("PIPELINE_PACING_DELAY", 500*time.Millisecond),
			MaxUploadSize: 5 * 1024 * 1024,
			OCRFallback:   envBool("PIPELINE_OCR_FALLBACK", false),

			SessionCacheSize: envInt("PIPELINE_SESSION_CACHE_SIZE", 256),
		}
	})
	return pipelineConfig
}
