package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (state transitions, session paths)
	LevelLive    = 2 // Live info (arm/disarm events, session progress)
	LevelVerbose = 3 // Verbose (per-cycle control values)
	LevelTrace   = 4 // Trace (GPIO/I2C, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (state transitions, telemetry session paths)
// 2 = live info (button events, arming progress)
// 3 = verbose (per-cycle angles, PID terms, throttles)
// 4 = trace (GPIO and I2C register traffic)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stdout, "[BenchyGo] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects log output, e.g. to a MultiWriter feeding the web
// status stream alongside stdout.
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelOff && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// State prints a flight-state transition (level 1).
func State(from, to string) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] State: %s -> %s", from, to)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// Throttle prints a throttle command pair (level 2).
func Throttle(m1, m2 int) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Throttle: m1=%d m2=%d", m1, m2)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// Printf is an alias for Verbose for compatibility.
func Printf(format string, args ...interface{}) {
	Verbose(format, args...)
}

// Cycle prints one control cycle's values (level 3).
func Cycle(tMS uint32, errDeg, out float64, m1, m2 int) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Cycle t=%dms err=%.2f out=%.2f m1=%d m2=%d", tMS, errDeg, out, m1, m2)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace, GPIO/I2C).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[GPIO] %s pin=%d value=%v", operation, pin, value)
	}
}

// I2C prints an I2C register operation (level 4).
func I2C(operation string, addr, reg byte, value interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[I2C] %s addr=0x%02X reg=0x%02X value=%v", operation, addr, reg, value)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt is a helper function that returns a formatted string
// only if debug is enabled (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
