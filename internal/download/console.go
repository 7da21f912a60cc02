package download

import (
	"fmt"

	"go.uber.org/zap"
)

// Sink receives user-facing log lines (the GUI log pane, or stdout).
type Sink func(string)

// Console mirrors download events to a Sink and to the structured logger.
type Console struct {
	sink   Sink
	logger *zap.Logger
}

func NewConsole(sink Sink, logger *zap.Logger) *Console {
	if sink == nil {
		sink = func(string) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{sink: sink, logger: logger}
}

func (c *Console) Log(msg string) {
	c.logger.Info(msg)
	c.sink(msg)
}

func (c *Console) LogComplete(name string, bytes int64) {
	c.logger.Info("Download complete", zap.String("file", name), zap.Int64("bytes", bytes))
	c.sink(fmt.Sprintf("Downloaded %s.", name))
}

func (c *Console) LogCancelled(name string) {
	c.logger.Warn("Download cancelled", zap.String("file", name))
	c.sink("Download cancelled: " + name)
}

func (c *Console) LogSkipped(path string) {
	c.logger.Info("Skipping existing file", zap.String("path", path))
	c.sink("Skipping existing file: " + path)
}

func (c *Console) LogError(msg string, err error) {
	c.logger.Error(msg, zap.Error(err))
	c.sink(fmt.Sprintf("ERROR: %s: %v", msg, err))
}

func (c *Console) LogTotalSize(size string) {
	c.sink("Total download size: " + size + ".")
}
