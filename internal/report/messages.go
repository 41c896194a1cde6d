package report

import (
	"time"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"
)

// DirectionCounts totals messages by direction.
type DirectionCounts struct {
	Received int
	Sent     int
}

// CountDirections scans every embedded message and counts those inside the
// window by direction.
func CountDirections(conversations []*models.Conversation, window Window) DirectionCounts {
	var counts DirectionCounts
	for _, conversation := range conversations {
		for _, msg := range conversation.Messages {
			if !window.Includes(msg.Timestamp) {
				continue
			}
			if msg.Outbound() {
				counts.Sent++
			} else {
				counts.Received++
			}
		}
	}
	return counts
}

// SeriesDays is the length of the daily message series.
const SeriesDays = 30

const dateLayout = "2006-01-02"

// DailyCount is one day of the message series.
type DailyCount struct {
	Date     string `json:"data"`
	Received int    `json:"recebidas"`
	Sent     int    `json:"enviadas"`
}

// DailySeries bins messages into the SeriesDays calendar days ending on
// now's date, oldest first. Messages outside that range are ignored. Days
// are taken in now's location.
func DailySeries(conversations []*models.Conversation, now time.Time) []DailyCount {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	series := make([]DailyCount, SeriesDays)
	index := make(map[string]int, SeriesDays)
	for i := 0; i < SeriesDays; i++ {
		date := today.AddDate(0, 0, i-(SeriesDays-1)).Format(dateLayout)
		series[i] = DailyCount{Date: date}
		index[date] = i
	}

	for _, conversation := range conversations {
		for _, msg := range conversation.Messages {
			i, ok := index[msg.Timestamp.In(loc).Format(dateLayout)]
			if !ok {
				continue
			}
			if msg.Outbound() {
				series[i].Sent++
			} else {
				series[i].Received++
			}
		}
	}
	return series
}
