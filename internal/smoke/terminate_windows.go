//go:build windows

package smoke

import "os"

// Windows has no SIGTERM equivalent for console processes.
func terminate(p *os.Process) error {
	return p.Kill()
}
