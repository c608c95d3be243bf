package application

// DataVersion is the default record version written when no override is configured.
const DataVersion = "2.1"

// DefaultPriceTable returns the fixed fallback price grid used when no
// persisted record exists or the stored one is unreadable.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		RoomTraining: {
			Morning: TierPrices{Hourly: 100, Daily: 800, Monthly: 18000},
			Evening: TierPrices{Hourly: 120, Daily: 900, Monthly: 20000},
		},
		RoomPrivate: {
			Morning: TierPrices{Hourly: 80, Daily: 600, Monthly: 15000},
			Evening: TierPrices{Hourly: 100, Daily: 750, Monthly: 18000},
		},
		RoomMeeting: {
			Morning: TierPrices{Hourly: 150, Daily: 1200, Monthly: 25000},
			Evening: TierPrices{Hourly: 180, Daily: 1400, Monthly: 30000},
		},
	}
}
