// Package log is the MAC engine's logging façade: components log through a
// Clog instance rather than a package-global logger, so a simulation
// driving many MAC engines side by side (as aether/ does) can give each one
// its own prefix and fields.
package log

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Provider is the sink a Clog forwards to. The default Provider is backed
// by logrus; tests can swap in their own to assert on emitted messages.
type Provider interface {
	Critical(format string, v ...interface{})
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Clog gates a Provider behind an atomic enable flag, so logging can be
// toggled at runtime (e.g. per-node in a large Aether simulation) without
// touching call sites.
type Clog struct {
	provider Provider
	enabled  uint32
}

// New returns a Clog backed by a logrus.Entry carrying the given fields.
func New(component string, fields logrus.Fields) Clog {
	entry := logrus.WithField("component", component)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	return Clog{provider: logrusProvider{entry}}
}

// SetEnabled turns logging through this Clog on or off.
func (c *Clog) SetEnabled(enabled bool) {
	if enabled {
		atomic.StoreUint32(&c.enabled, 1)
	} else {
		atomic.StoreUint32(&c.enabled, 0)
	}
}

// SetProvider overrides the sink, e.g. to capture log lines in a test.
func (c *Clog) SetProvider(p Provider) {
	if p != nil {
		c.provider = p
	}
}

func (c Clog) Critical(format string, v ...interface{}) {
	if atomic.LoadUint32(&c.enabled) == 1 {
		c.provider.Critical(format, v...)
	}
}

func (c Clog) Error(format string, v ...interface{}) {
	if atomic.LoadUint32(&c.enabled) == 1 {
		c.provider.Error(format, v...)
	}
}

func (c Clog) Warn(format string, v ...interface{}) {
	if atomic.LoadUint32(&c.enabled) == 1 {
		c.provider.Warn(format, v...)
	}
}

func (c Clog) Debug(format string, v ...interface{}) {
	if atomic.LoadUint32(&c.enabled) == 1 {
		c.provider.Debug(format, v...)
	}
}

type logrusProvider struct {
	entry *logrus.Entry
}

var _ Provider = logrusProvider{}

func (p logrusProvider) Critical(format string, v ...interface{}) {
	p.entry.Errorf("[critical] "+format, v...)
}

func (p logrusProvider) Error(format string, v ...interface{}) {
	p.entry.Errorf(format, v...)
}

func (p logrusProvider) Warn(format string, v ...interface{}) {
	p.entry.Warnf(format, v...)
}

func (p logrusProvider) Debug(format string, v ...interface{}) {
	p.entry.Debugf(format, v...)
}
