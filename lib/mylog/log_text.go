package mylog

import (
	"context"
	"fmt"
	"os"
	"time"
)

func init() {
	if os.Getenv("LOG_FORMAT") != "json" {
		New = newTextLogger
	}
}

type textLogger struct {
	componentName string
}

func newTextLogger(componentName string) Logger {
	return textLogger{
		componentName: componentName,
	}
}

func (l textLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s - %s - %s - %s\n",
		time.Now().Format(time.RFC3339), l.componentName, traceLabel, string(severity), fmt.Sprintf(format, a...))
}
