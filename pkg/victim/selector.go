package victim

import "github.com/oomwatch/oomwatchd/pkg/procfs"

// ProcSource is the slice of procfs.Reader the selector needs. It is
// declared here, not imported as a concrete type, so tests can supply
// a fake process table without building one on disk.
type ProcSource interface {
	Pids() ([]int, error)
	Exists(pid int) bool
	OOMScore(pid int) (int, error)
	OOMScoreAdj(pid int) (int, error)
	Comm(pid int) (string, error)
	UID(pid int) (int, error)
	RSSKiB(pid int) (int64, error)
	Times(pid int) (procfs.Times, error)
}

// UsernameFunc resolves a UID to a username; the default wraps
// os/user.LookupId. Injectable so tests do not depend on /etc/passwd.
type UsernameFunc func(uid int) (string, error)

// Logger receives debug-level diagnostics for candidates the selector
// skips. Satisfied by *zap.SugaredLogger; nil is valid and silences
// per-PID diagnostics entirely.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
}

// Options bundles the per-scan configuration the selector needs.
// RegexSet and the booleans are immutable for the daemon's lifetime.
type Options struct {
	IgnoreOOMScoreAdj bool
	Regexes           RegexSet
	ResolveUsername   UsernameFunc
	SelfPID           int // the daemon's own PID; used for the hidepid check
	Logger            Logger
}

func debugw(l Logger, msg string, kv ...interface{}) {
	if l != nil {
		l.Debugw(msg, kv...)
	}
}

// Candidate is a fully validated scan result: a process that survived
// every skip rule and is eligible to be selected as a victim.
type Candidate struct {
	PID         int
	UID         int
	Badness     int
	RSSKiB      int64
	Name        string
	Username    string
	OOMScoreAdj int
	Utime       float64
	Stime       float64
	Runtime     float64
}

// ReadCounts tallies how many times each expensive field was read
// during one Select call, for tests that assert on the optimization
// contract (see package doc).
type ReadCounts struct {
	OOMScoreReads    int
	OOMScoreAdjReads int
	NameReads        int
	UserReads        int
	RSSReads         int
	TimesReads       int
	CandidatesSeen   int
}

// Result is the outcome of one full scan.
type Result struct {
	Victim  *Candidate
	Reads   ReadCounts
	SawOnly bool // true iff the only PID observed was SelfPID (hidepid)
}

// Select performs one full pass over src.Pids(), returning at most one
// victim under the total order: higher badness wins; on a badness tie,
// higher RSS wins; on a full tie, the first-seen candidate wins. The
// daemon's own PID (opts.SelfPID) is never a candidate. No global sort
// is ever performed — this is a streaming max.
func Select(src ProcSource, opts Options) (Result, error) {
	pids, err := src.Pids()
	if err != nil {
		return Result{}, err
	}

	var (
		best     *Candidate
		reads    ReadCounts
		seen     int
		onlySelf = true
	)

	for _, pid := range pids {
		if pid == opts.SelfPID {
			continue
		}
		onlySelf = false
		if pid <= 1 {
			continue
		}
		seen++

		badness, adjFirstPass, ok := scoreBase(src, pid, opts, &reads)
		if !ok {
			continue
		}

		name, ok := scoreName(src, pid, opts, &reads, &badness)
		if !ok {
			continue
		}

		username, ok := scoreUser(src, pid, opts, &reads, &badness)
		if !ok {
			continue
		}

		runtime, utime, stime, ok := scorePreferOld(src, pid, name, opts, &reads, &badness)
		if !ok {
			continue
		}

		// Only candidates that can still win are worth the expensive
		// RSS + fresh oom_score_adj re-check.
		if best != nil && badness < best.Badness {
			continue
		}

		adj := adjFirstPass
		if !opts.IgnoreOOMScoreAdj {
			var err error
			adj, err = src.OOMScoreAdj(pid)
			reads.OOMScoreAdjReads++
			if err != nil {
				debugw(opts.Logger, "skip candidate: oom_score_adj read failed", "pid", pid, "err", err)
				continue
			}
		}
		if adj == -1000 {
			debugw(opts.Logger, "skip candidate: oom_score_adj is -1000 (never kill)", "pid", pid)
			continue
		}

		rss, err := src.RSSKiB(pid)
		reads.RSSReads++
		if err != nil {
			debugw(opts.Logger, "skip candidate: rss read failed", "pid", pid, "err", err)
			continue
		}
		if rss == 0 {
			debugw(opts.Logger, "skip candidate: rss is zero (kernel thread or already exiting)", "pid", pid)
			continue
		}

		cand := &Candidate{
			PID:         pid,
			Badness:     badness,
			RSSKiB:      rss,
			Name:        name,
			Username:    username,
			OOMScoreAdj: adj,
			Utime:       utime,
			Stime:       stime,
			Runtime:     runtime,
		}
		if uid, err := src.UID(pid); err == nil {
			cand.UID = uid
		}

		if best == nil || betterThan(cand, best) {
			best = cand
		}
	}

	reads.CandidatesSeen = seen
	return Result{Victim: best, Reads: reads, SawOnly: onlySelf && len(pids) > 0}, nil
}

// betterThan implements the total order: badness first, RSS breaks
// ties, first-seen wins full ties (so c never replaces best on equality).
func betterThan(c, best *Candidate) bool {
	if c.Badness != best.Badness {
		return c.Badness > best.Badness
	}
	return c.RSSKiB > best.RSSKiB
}

// scoreBase reads oom_score (always) and, if ignore_oom_score_adj is
// set, oom_score_adj (first conditional read) to apply the negative
// adjustment to badness. It returns ok=false if either read fails.
func scoreBase(src ProcSource, pid int, opts Options, reads *ReadCounts) (badness int, adj int, ok bool) {
	score, err := src.OOMScore(pid)
	reads.OOMScoreReads++
	if err != nil {
		debugw(opts.Logger, "skip candidate: oom_score read failed", "pid", pid, "err", err)
		return 0, 0, false
	}
	badness = score

	if opts.IgnoreOOMScoreAdj {
		adj, err = src.OOMScoreAdj(pid)
		reads.OOMScoreAdjReads++
		if err != nil {
			debugw(opts.Logger, "skip candidate: oom_score_adj read failed", "pid", pid, "err", err)
			return 0, 0, false
		}
		if adj > 0 {
			badness -= adj
		}
	}
	return badness, adj, true
}

// scoreName reads the process name only if a name-consuming regex is
// active, and applies the prefer/avoid adjustments.
func scoreName(src ProcSource, pid int, opts Options, reads *ReadCounts, badness *int) (string, bool) {
	if !opts.Regexes.NameActive() {
		return "", true
	}
	name, err := src.Comm(pid)
	reads.NameReads++
	if err != nil {
		debugw(opts.Logger, "skip candidate: comm read failed", "pid", pid, "err", err)
		return "", false
	}
	if opts.Regexes.Prefer != nil && opts.Regexes.Prefer.MatchString(name) {
		*badness += 300
	}
	if opts.Regexes.Avoid != nil && opts.Regexes.Avoid.MatchString(name) {
		*badness -= 300
	}
	return name, true
}

// scoreUser resolves the username only if avoid_users is active. A
// lookup failure is a skip rule in its own right.
func scoreUser(src ProcSource, pid int, opts Options, reads *ReadCounts, badness *int) (string, bool) {
	if !opts.Regexes.UsersActive() {
		return "", true
	}
	uid, err := src.UID(pid)
	if err != nil {
		debugw(opts.Logger, "skip candidate: uid read failed", "pid", pid, "err", err)
		return "", false
	}
	resolve := opts.ResolveUsername
	if resolve == nil {
		resolve = defaultResolveUsername
	}
	username, err := resolve(uid)
	reads.UserReads++
	if err != nil {
		debugw(opts.Logger, "skip candidate: username lookup failed", "pid", pid, "uid", uid, "err", err)
		return "", false
	}
	if opts.Regexes.AvoidUsers.MatchString(username) {
		*badness -= 150
	}
	return username, true
}

// scorePreferOld always refreshes ptimes when prefer_old is active
// (rather than only when a name regex happened to match), so a stale
// sample from an earlier non-matching candidate never leaks into a
// later match's score. name was already read by scoreName whenever
// prefer_old is active, since prefer_old implies NameActive.
func scorePreferOld(src ProcSource, pid int, name string, opts Options, reads *ReadCounts, badness *int) (runtime, utime, stime float64, ok bool) {
	if opts.Regexes.PreferOld == nil {
		return 0, 0, 0, true
	}
	times, err := src.Times(pid)
	reads.TimesReads++
	if err != nil {
		debugw(opts.Logger, "skip candidate: stat times read failed", "pid", pid, "err", err)
		return 0, 0, 0, false
	}
	if opts.Regexes.PreferOld.MatchString(name) {
		*badness += int(times.Runtime) / 600
	}
	return times.Runtime, times.Utime, times.Stime, true
}
