package logger

import (
	"github.com/rollbar/rollbar-go"
	"go.uber.org/zap/zapcore"
)

// Reporter is the subset of *rollbar.Client the core uses.
type Reporter interface {
	ErrorWithExtras(level string, err error, extras map[string]interface{})
	MessageWithExtras(level string, msg string, extras map[string]interface{})
	Wait()
}

// rollbarCore forwards entries at or above its level to Rollbar.
type rollbarCore struct {
	zapcore.LevelEnabler
	reporter Reporter
	fields   []zapcore.Field
}

// NewRollbarCore returns a zap core reporting entries at or above min.
func NewRollbarCore(r Reporter, min zapcore.LevelEnabler) zapcore.Core {
	return &rollbarCore{LevelEnabler: min, reporter: r}
}

func (c *rollbarCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &rollbarCore{LevelEnabler: c.LevelEnabler, reporter: c.reporter, fields: merged}
}

func (c *rollbarCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *rollbarCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	var cause error
	for _, set := range [][]zapcore.Field{c.fields, fields} {
		for _, f := range set {
			if f.Type == zapcore.ErrorType && cause == nil {
				if err, ok := f.Interface.(error); ok {
					cause = err
				}
			}
			f.AddTo(enc)
		}
	}
	extras := enc.Fields
	extras["message"] = ent.Message
	if ent.LoggerName != "" {
		extras["logger"] = ent.LoggerName
	}
	if ent.Caller.Defined {
		extras["caller"] = ent.Caller.TrimmedPath()
	}

	level := rollbar.ERR
	if ent.Level >= zapcore.DPanicLevel {
		level = rollbar.CRIT
	}
	if cause != nil {
		c.reporter.ErrorWithExtras(level, cause, extras)
	} else {
		c.reporter.MessageWithExtras(level, ent.Message, extras)
	}
	return nil
}

func (c *rollbarCore) Sync() error {
	c.reporter.Wait()
	return nil
}
