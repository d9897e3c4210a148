package common

import "fmt"

const (
	MiB = 1 << 20

	// ChatMaterialLimit caps inline uploads on the chat materials path.
	ChatMaterialLimit = 15 * MiB
	// FileDangerThreshold marks a generic file as risky for local storage.
	FileDangerThreshold = 25 * MiB
	// PresentationLimit caps presentation uploads.
	PresentationLimit = 50 * MiB
	// BundleWarnThreshold is the bundle size above which reloading it gets slow.
	BundleWarnThreshold = 100 * MiB
)

// SizeLevel classifies a payload against the advisory thresholds.
type SizeLevel string

const (
	SizeOK     SizeLevel = "ok"
	SizeDanger SizeLevel = "danger"
)

// CheckSize returns an error wrapping ErrPayloadTooLarge when size exceeds limit.
func CheckSize(size int64, limit int64) error {
	if size > limit {
		return fmt.Errorf("%w: %s exceeds the %s limit", ErrPayloadTooLarge, FormatSize(size), FormatSize(limit))
	}
	return nil
}

// AssessSize reports whether a generic file is above the danger threshold.
// It never rejects.
func AssessSize(size int64) SizeLevel {
	if size > FileDangerThreshold {
		return SizeDanger
	}
	return SizeOK
}

// FormatSize renders a byte count for user messages.
func FormatSize(n int64) string {
	switch {
	case n >= MiB:
		return fmt.Sprintf("%.1f MB", float64(n)/MiB)
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
