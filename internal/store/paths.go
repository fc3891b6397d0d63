package store

import "github.com/8ria/pulse/internal/contract"

// GetScheduleDBFilePath returns the path to the SQLite DB file for schedule storage.
func GetScheduleDBFilePath() string {
	return contract.GetScheduleDBFilePath()
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	return contract.GetHistoryDBFilePath()
}
