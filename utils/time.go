package utils

import "time"

const (
	// DisplayLayout is the human timestamp used in records and log headers
	DisplayLayout = "2006-01-02 15:04:05"
	// FileStampLayout is embedded in generated file names
	FileStampLayout = "20060102_150405"
)

// SecondsBetween returns num of seconds between two timestamps
func SecondsBetween(from time.Time, to time.Time) float64 {
	return to.Sub(from).Seconds()
}

// FileStamp formats t for use in file names
func FileStamp(t time.Time) string {
	return t.Format(FileStampLayout)
}
