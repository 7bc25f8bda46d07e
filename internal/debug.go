package internal

import "log/slog"

// LevelTrace is a logging level below slog.LevelDebug for the highest
// volume, per-segment log lines (every admitted/rejected segment).
const LevelTrace slog.Level = slog.LevelDebug - 2
