package goSession

import "time"

// LintSeverity ranks a LintWarning.
type LintSeverity int

const (
	// LintInfo marks a setting worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks a setting that weakens the session cookie or the snapshot.
	LintWarn
)

// LintWarning is one finding from Config.Lint.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintWarnings is the list returned by Config.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports valid but questionable settings. It never fails; run Validate first.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	p := c.Persistence

	if !p.Secure {
		ws = append(ws, LintWarning{Code: "snapshot_insecure_transport", Severity: LintWarn,
			Message: "snapshot may be sent over plain HTTP"})
	}
	if !p.HTTPOnly {
		ws = append(ws, LintWarning{Code: "snapshot_script_readable", Severity: LintWarn,
			Message: "snapshot cookie is readable by page scripts"})
	}
	if p.Expiration > 30*24*time.Hour {
		ws = append(ws, LintWarning{Code: "snapshot_long_lived", Severity: LintInfo,
			Message: "snapshot outlives 30 days; a stale profile may be shown until the next fetch"})
	}
	if p.MaxSnapshotBytes > 4096 {
		ws = append(ws, LintWarning{Code: "snapshot_exceeds_cookie_limit", Severity: LintInfo,
			Message: "snapshots above 4 KiB are rejected by cookie-backed storage"})
	}
	if c.Identity.BaseURL != "" && c.Identity.Timeout == 0 {
		ws = append(ws, LintWarning{Code: "identity_no_timeout", Severity: LintWarn,
			Message: "identity requests fall back to the client default timeout"})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{Code: "audit_blocking", Severity: LintInfo,
			Message: "store mutations block while the audit buffer is full"})
	}

	return ws
}
