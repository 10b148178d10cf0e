package kill

import "syscall"

// NameSource lists PIDs and reads their short process name. Satisfied
// by *procfs.Reader.
type NameSource interface {
	Pids() ([]int, error)
	Comm(pid int) (string, error)
}

// Emergency performs the en-masse, unconditional SIGKILL sweep for a
// configured ordered list of process names (spec §4.5). It never
// honours dryrun: emergency action is meant to be unconditional.
type Emergency struct {
	Signaler Signaler
	Names    NameSource
	Mem      MemSource
	HighPct  float64
}

// Run iterates the configured names in order, stopping as soon as
// MemAvailable recovers above HighPct. It returns the total number of
// processes killed.
func (e *Emergency) Run(names []string) (int, error) {
	total := 0
	for _, name := range names {
		snap, err := e.Mem.Read()
		if err != nil {
			return total, err
		}
		if snap.MemAvailablePct > e.HighPct {
			break
		}

		pids, err := e.Names.Pids()
		if err != nil {
			continue
		}
		for _, pid := range pids {
			if pid <= 1 {
				continue
			}
			comm, err := e.Names.Comm(pid)
			if err != nil {
				continue
			}
			if comm != name {
				continue
			}
			_ = e.Signaler.Kill(pid, syscall.SIGKILL)
			total++
		}
	}
	return total, nil
}
