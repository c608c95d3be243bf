package persistence

import (
	"time"

	"github.com/example/pricing-console/internal/application"
)

// Wire forms of the persisted records. Timestamps are stored twice on
// purpose: an ISO string for humans and epoch milliseconds for cheap
// comparisons by external readers.

type priceRecordJSON struct {
	Prices      application.PriceTable `json:"prices"`
	Version     string                 `json:"version"`
	LastUpdated string                 `json:"lastUpdated"`
	Timestamp   int64                  `json:"timestamp"`
	UpdatedBy   string                 `json:"updatedBy"`
}

type roomMirrorJSON struct {
	Morning     application.TierPrices `json:"morning"`
	Evening     application.TierPrices `json:"evening"`
	LastUpdated string                 `json:"lastUpdated"`
	Timestamp   int64                  `json:"timestamp"`
	RoomType    string                 `json:"roomType"`
	UpdatedBy   string                 `json:"updatedBy"`
}

type backupRecordJSON struct {
	Prices            application.PriceTable `json:"prices"`
	Version           string                 `json:"version"`
	BackupDate        string                 `json:"backupDate"`
	OriginalTimestamp int64                  `json:"originalTimestamp"`
}

type sessionJSON struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	LoginTime int64  `json:"loginTime"`
	ExpiresAt int64  `json:"expiresAt"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
