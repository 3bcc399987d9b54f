package mylog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/routedesk/authrelay/lib/mycontext"
)

func init() {
	if os.Getenv("LOG_FORMAT") == "json" {
		New = newJSONLogger
		// Prefix text prevents the line from being parsed as JSON.
		log.SetFlags(0)
	}
}

type jsonLogger struct {
	componentName string
}

func newJSONLogger(componentName string) Logger {
	return jsonLogger{
		componentName: componentName,
	}
}

func (l jsonLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...interface{}) {
	log.Println(entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Component: l.componentName,
		Labels:    map[string]string{"flow": traceLabel},
		TraceID:   mycontext.TraceID(ctx),
		Severity:  string(severity),
		Message:   l.componentName + ":" + fmt.Sprintf(format, a...),
	}.String())
}

type entry struct {
	Timestamp string            `json:"timestamp"`
	Component string            `json:"component,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	TraceID   string            `json:"trace_id,omitempty"`
	Severity  string            `json:"severity,omitempty"`
	Message   string            `json:"message"`
}

func (e entry) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		log.Printf("error marshalling log record: %v", err)
	}

	return string(out)
}
