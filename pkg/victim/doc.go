// Package victim implements the single-pass OOM victim selector: given
// a process source and a regex/user-preference bundle, it computes a
// badness score per candidate and streams a running best under a
// strict total order, without ever sorting the whole process table.
//
// The read order inside Select is part of its behavioural contract
// (see RegexSet and Options): oom_score is read for every candidate,
// the name only while a name regex is active, the username only while
// avoid_users is active, and RSS plus a fresh oom_score_adj only for
// candidates that tie or beat the current best on badness. ReadCounts
// lets tests observe that the bound holds.
package victim
