package logger

import (
	"fmt"
	"log"
	"os"
)

// New returns a stdlib-backed logger with a tool-name prefix, used by the
// maintenance binaries.
func New(tool string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", tool)
	return log.New(os.Stdout, prefix, log.LstdFlags)
}
