package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func String(name, def string) string {
	if v, ok := lookup(name); ok {
		return v
	}
	return def
}

func Int(name string, def int) int {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func Float(name string, def float64) float64 {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Minutes reads an integer count of minutes; non-positive values fall back to def.
func Minutes(name string, def time.Duration) time.Duration {
	n := Int(name, -1)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Minute
}

// List splits a comma separated variable, dropping blanks.
func List(name string) []string {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Logged wraps the readers above and reports at debug level whether a default was used.
type Logged struct {
	log *logger.Logger
}

func WithLogger(log *logger.Logger) Logged {
	return Logged{log: log}
}

func (l Logged) String(name, def string) string {
	_, ok := lookup(name)
	l.report(name, ok)
	return String(name, def)
}

func (l Logged) Int(name string, def int) int {
	_, ok := lookup(name)
	l.report(name, ok)
	return Int(name, def)
}

func (l Logged) Bool(name string, def bool) bool {
	_, ok := lookup(name)
	l.report(name, ok)
	return Bool(name, def)
}

func (l Logged) report(name string, found bool) {
	if l.log == nil {
		return
	}
	if found {
		l.log.Debug("Environment variable found, using environment", "env_var", name)
		return
	}
	l.log.Debug("Environment variable not found, using default", "env_var", name)
}
