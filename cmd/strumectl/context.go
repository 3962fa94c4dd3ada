package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cesargomez89/strume/internal/acoustid"
	"github.com/cesargomez89/strume/internal/config"
	"github.com/cesargomez89/strume/internal/fingerprint"
	"github.com/cesargomez89/strume/internal/logger"
	"github.com/cesargomez89/strume/internal/separator"
)

type commandContext struct {
	// model, fingerprinter and lookup replace the configured collaborators
	// when set.
	model         separator.Model
	fingerprinter fingerprint.Fingerprinter
	lookup        acoustid.Lookup

	configFlag string
	jsonOutput bool
	verbose    bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.configFlag)
		if path == "" {
			path = os.Getenv("CONFIG_FILE")
		}
		cfg, err := config.LoadFile(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) *logger.Logger {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "text", Output: w})
}
