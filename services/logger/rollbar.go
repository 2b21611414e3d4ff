// Package logsvc provides the core.Logger of the binaries: leveled lines on a std logger, reported to rollbar.
package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levels = [...]struct {
	name    string
	rollbar string
}{
	levelDebug: {"DEBUG", rollbar.DEBUG},
	levelInfo:  {"INFO", rollbar.INFO},
	levelWarn:  {"WARN", rollbar.WARN},
	levelError: {"ERROR", rollbar.ERR},
	levelFatal: {"FATAL", rollbar.CRIT},
}

type RollbarLogger struct {
	std      *log.Logger
	minLevel level
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger reports to rollbar when a token is configured and debug mode is off.
// Debug lines are only printed in debug mode.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)

	l := &RollbarLogger{std: std, minLevel: levelInfo}
	if conf.Debug {
		l.minLevel = levelDebug
	}
	return l
}

// Close waits for the queued reports to be sent.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

// split sorts args into what rollbar reports: the error, the extras and the first user.User as person.
// expected args: error, map[string]interface{}, user.User
func split(args []interface{}) (err error, extras map[string]interface{}, usr *user.User) {
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			if err == nil {
				err = v
			}
		case map[string]interface{}:
			if extras == nil {
				extras = make(map[string]interface{}, len(v))
			}
			for k, val := range v {
				extras[k] = val
			}
		case user.User:
			if usr == nil {
				u := v
				usr = &u
			}
		}
	}
	return err, extras, usr
}

func formatLine(lvl level, msg string, err error, extras map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", levels[lvl].name, msg)
	if len(extras) > 0 {
		keys := make([]string, 0, len(extras))
		for k := range extras {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, extras[k])
		}
	}
	if err != nil && err.Error() != msg {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	return b.String()
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	err, extras, usr := split(args)

	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
	} else {
		rollbar.ClearPerson()
	}
	report := []interface{}{msg}
	if err != nil {
		report = append(report, err)
	}
	if extras != nil {
		report = append(report, extras)
	}
	rollbar.Log(levels[lvl].rollbar, report...)

	if lvl >= l.minLevel {
		l.std.Println(formatLine(lvl, msg, err, extras))
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
