package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath names the session log file: <app>.<session start>.log
// inside logsDir, with OS-appropriate separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	name := fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405"))
	return filepath.Join(logsDir, name)
}
