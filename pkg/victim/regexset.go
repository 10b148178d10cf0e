package victim

import "regexp"

// RegexSet bundles the compiled, immutable regexes used to adjust
// badness scores. Every field is optional (nil means "inactive") and
// the bundle is shared read-only across every scan for the daemon's
// lifetime; nothing here mutates after startup.
type RegexSet struct {
	// Prefer matches process names to bias towards killing.
	Prefer *regexp.Regexp
	// Avoid matches process names to bias away from killing.
	Avoid *regexp.Regexp
	// AvoidUsers matches resolved usernames to bias away from killing.
	AvoidUsers *regexp.Regexp
	// PreferOld matches process names that should additionally be
	// scored up the longer they have been running.
	PreferOld *regexp.Regexp
}

// NameActive reports whether any regex that needs the process name is
// configured.
func (rs RegexSet) NameActive() bool {
	return rs.Prefer != nil || rs.Avoid != nil || rs.PreferOld != nil
}

// UsersActive reports whether avoid_users is configured.
func (rs RegexSet) UsersActive() bool {
	return rs.AvoidUsers != nil
}

// Compile compiles the four optional patterns, returning a descriptive
// error (with the offending field named) on the first failure so
// callers can map it to the exit-code-6 "regex compile failure" path.
func Compile(prefer, avoid, avoidUsers, preferOld string) (RegexSet, error) {
	var rs RegexSet
	var err error
	if rs.Prefer, err = compileOptional("prefer", prefer); err != nil {
		return RegexSet{}, err
	}
	if rs.Avoid, err = compileOptional("avoid", avoid); err != nil {
		return RegexSet{}, err
	}
	if rs.AvoidUsers, err = compileOptional("avoid_users", avoidUsers); err != nil {
		return RegexSet{}, err
	}
	if rs.PreferOld, err = compileOptional("prefer_old", preferOld); err != nil {
		return RegexSet{}, err
	}
	return rs, nil
}

func compileOptional(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &CompileError{Field: field, Pattern: pattern, Err: err}
	}
	return re, nil
}

// CompileError names which configured regex field failed to compile.
type CompileError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return "victim: regex " + e.Field + " (" + e.Pattern + "): " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }
