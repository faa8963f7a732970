package update

import (
	"strings"
	"time"
)

type RuntimeConfig struct {
	// BlockUUID identifies the owning block; view state is only persisted
	// and the macro only rewritten when it is set.
	BlockUUID       string
	Query           string
	RefreshDelay    time.Duration
	RequestTimeout  time.Duration
	SchedulerBuffer int
	CellWidth       int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		RefreshDelay:    500 * time.Millisecond,
		RequestTimeout:  10 * time.Second,
		SchedulerBuffer: 64,
		CellWidth:       24,
	}
}

// normalized fills zero values from the defaults.
func (c RuntimeConfig) normalized() RuntimeConfig {
	def := DefaultRuntimeConfig()
	c.BlockUUID = strings.TrimSpace(c.BlockUUID)
	c.Query = strings.TrimSpace(c.Query)
	if c.RefreshDelay <= 0 {
		c.RefreshDelay = def.RefreshDelay
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.SchedulerBuffer <= 0 {
		c.SchedulerBuffer = def.SchedulerBuffer
	}
	if c.CellWidth <= 0 {
		c.CellWidth = def.CellWidth
	}
	return c
}
