// Package logger configures the process-wide logrus logger. Suppression
// files carry customer email addresses, so a hook masks address-bearing
// fields before an entry is written anywhere.
package logger

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logger: output, formatter, level, and
// the address-redaction hook.
func Setup(out io.Writer, verbose bool) {
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.AddHook(redactHook{})
}

// redactHook masks string fields whose key names an email address.
type redactHook struct{}

func (redactHook) Levels() []log.Level { return log.AllLevels }

func (redactHook) Fire(e *log.Entry) error {
	for k, v := range e.Data {
		s, ok := v.(string)
		if !ok {
			continue
		}
		key := strings.ToLower(k)
		if strings.Contains(key, "recipient") || strings.Contains(key, "email") {
			e.Data[k] = RedactEmail(s)
		}
	}
	return nil
}
