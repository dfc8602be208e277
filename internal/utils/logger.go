package utils

import (
	"log"
	"strings"

	"github.com/fatih/color"
)

var (
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
	warnTag  = color.New(color.FgYellow).SprintFunc()
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, message)
}

// LogWarn is LogEvent with a highlighted WARN tag.
func LogWarn(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	log.Printf("%s [%s] action=%s request_id=%s msg=%s", warnTag("WARN"), strings.ToUpper(module), action, req, message)
}

// LogError records a failed action together with its error.
func LogError(requestID, module, action string, err error) {
	req := strings.TrimSpace(requestID)
	log.Printf("%s [%s] action=%s request_id=%s err=%v", errorTag("ERROR"), strings.ToUpper(module), action, req, err)
}
