package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingProvider struct {
	lines []string
}

func (r *recordingProvider) Critical(format string, v ...interface{}) { r.record("C", format, v...) }
func (r *recordingProvider) Error(format string, v ...interface{})    { r.record("E", format, v...) }
func (r *recordingProvider) Warn(format string, v ...interface{})     { r.record("W", format, v...) }
func (r *recordingProvider) Debug(format string, v ...interface{})    { r.record("D", format, v...) }

func (r *recordingProvider) record(level, format string, v ...interface{}) {
	r.lines = append(r.lines, level+":"+format)
}

func TestDisabledByDefault(t *testing.T) {
	c := New("test", nil)
	rec := &recordingProvider{}
	c.SetProvider(rec)
	c.Warn("hello")
	assert.Empty(t, rec.lines)
}

func TestEnabledForwards(t *testing.T) {
	c := New("test", nil)
	rec := &recordingProvider{}
	c.SetProvider(rec)
	c.SetEnabled(true)
	c.Warn("hello %d", 1)
	c.Error("bye")
	assert.Equal(t, []string{"W:hello %d", "E:bye"}, rec.lines)
}
