package meminfo

import "errors"

// ParseError indicates /proc/meminfo was missing one of the mandatory
// keys (MemTotal, MemAvailable, SwapTotal, SwapFree).
var ParseError = errors.New("meminfo: missing mandatory key")
