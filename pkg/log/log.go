package log

import (
	"io"
	"log"
	"os"
)

// DebugEnv enables Debug output when set to a non-empty value.
const DebugEnv = "EXPRINPUT_DEBUG"

// SetOutput redirects every level to w. The console points this at a file
// while the alternate screen is active.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Fatal(v ...any) {
	args := make([]any, 0, len(v)+1)
	args = append(args, "[FATAL]")
	args = append(args, v...)
	log.Println(args...)
}

func Warn(v ...any) {
	args := make([]any, 0, len(v)+1)
	args = append(args, "[WARN]")
	args = append(args, v...)
	log.Println(args...)
}

func Info(v ...any) {
	args := make([]any, 0, len(v)+1)
	args = append(args, "[INFO]")
	args = append(args, v...)
	log.Println(args...)
}

func Debug(v ...any) {
	if os.Getenv(DebugEnv) == "" {
		return
	}
	args := make([]any, 0, len(v)+1)
	args = append(args, "[DEBUG]")
	args = append(args, v...)
	log.Println(args...)
}
