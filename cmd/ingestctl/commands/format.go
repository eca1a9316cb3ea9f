package commands

import (
	"time"

	"github.com/ingestguard/ingestguard/internal/bytesize"
)

func formatBytes(n int64) string {
	return bytesize.ByteSize(n).String()
}

func formatTimestampMs(ms int64) string {
	return time.UnixMilli(ms).Local().Format(time.RFC3339)
}
