// Package analytics computes rolling performance statistics from the
// interaction log. Everything here is a pure function of its inputs:
// nothing mutates the log, reads a clock, or touches the store, so the
// functions are safe to call from any number of concurrent readers.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/schedule"
)

// LeadMetrics computes per-lead order statistics over interactions inside
// [start, end]. Weekday and calendar-day bucketing use loc, the timezone
// the figures are being read in. Interactions are expected ordered by
// creation time; non-ORDER interactions are ignored.
func LeadMetrics(interactions []domain.Interaction, start, end time.Time, loc *time.Location) domain.LeadPerformance {
	if loc == nil {
		loc = time.UTC
	}
	windowDays := windowLengthDays(start, end)

	perf := domain.LeadPerformance{
		WindowDays:   windowDays,
		WeeklyTrends: []domain.WeeklyTrend{},
	}

	daysWithOrders := map[string]struct{}{}
	var gaps []float64
	var lastOrderAt time.Time

	weekStart := schedule.StartOfDay(start, loc)
	weekOrders := 0
	weekValue := 0.0
	haveOrders := false

	for _, in := range interactions {
		if in.Type != domain.InteractionTypeOrder {
			continue
		}
		if in.CreatedAt.Before(start) || in.CreatedAt.After(end) {
			continue
		}

		perf.TotalOrders++
		perf.TotalValue += in.OrderValue

		local := in.CreatedAt.In(loc)
		perf.OrdersByWeekday[int(local.Weekday())]++
		daysWithOrders[local.Format("2006-01-02")] = struct{}{}

		if haveOrders {
			gaps = append(gaps, in.CreatedAt.Sub(lastOrderAt).Hours()/24)
		}
		lastOrderAt = in.CreatedAt

		// Close out 7-day buckets up to the order's week
		for !in.CreatedAt.Before(weekStart.AddDate(0, 0, 7)) {
			perf.WeeklyTrends = append(perf.WeeklyTrends, domain.WeeklyTrend{
				WeekStart: weekStart.Format("2006-01-02"),
				Orders:    weekOrders,
				Value:     weekValue,
			})
			weekStart = weekStart.AddDate(0, 0, 7)
			weekOrders = 0
			weekValue = 0
		}
		weekOrders++
		weekValue += in.OrderValue
		haveOrders = true
	}

	perf.WeeklyTrends = append(perf.WeeklyTrends, domain.WeeklyTrend{
		WeekStart: weekStart.Format("2006-01-02"),
		Orders:    weekOrders,
		Value:     weekValue,
	})

	if perf.TotalOrders > 0 {
		perf.AverageOrderValue = perf.TotalValue / float64(perf.TotalOrders)
	}
	perf.OrderFrequency = float64(perf.TotalOrders) / float64(windowDays)
	if len(gaps) > 0 {
		var sum float64
		for _, g := range gaps {
			sum += g
		}
		perf.AverageOrderGapDays = sum / float64(len(gaps))
	}
	perf.DaysWithOrders = len(daysWithOrders)
	perf.ConsistencyPercent = float64(len(daysWithOrders)) / float64(windowDays) * 100

	return perf
}

// topLeadCount is how many leads the dashboard ranking returns.
const topLeadCount = 5

// KamMetrics aggregates a KAM's portfolio over interactions inside
// [start, end]. leads are the KAM's currently-owned leads; interactions
// may span any of them and are filtered to the window here.
func KamMetrics(leads []domain.Lead, interactions []domain.Interaction, start, end time.Time) domain.KamDashboard {
	dash := domain.KamDashboard{
		TotalLeads:    len(leads),
		LeadsByStatus: map[domain.LeadStatus]int{},
		TopLeads:      []domain.LeadValue{},
	}

	leadNames := make(map[uuid.UUID]string, len(leads))
	for _, lead := range leads {
		dash.LeadsByStatus[lead.Status]++
		leadNames[lead.ID] = lead.Name
	}

	valueByLead := map[uuid.UUID]float64{}
	for _, in := range interactions {
		if in.CreatedAt.Before(start) || in.CreatedAt.After(end) {
			continue
		}
		switch in.Type {
		case domain.InteractionTypeCall:
			dash.TotalCalls++
		case domain.InteractionTypeOrder:
			dash.TotalOrders++
			dash.TotalValue += in.OrderValue
			valueByLead[in.LeadID] += in.OrderValue
		}
	}

	if len(leads) > 0 {
		total := float64(len(leads))
		dash.ConversionRate = float64(dash.LeadsByStatus[domain.LeadStatusConverted]) / total * 100
		dash.AverageCallsPerLead = float64(dash.TotalCalls) / total
		dash.AverageOrdersPerLead = float64(dash.TotalOrders) / total
		dash.AverageValuePerLead = dash.TotalValue / total
	}

	ranked := make([]domain.LeadValue, 0, len(valueByLead))
	for id, value := range valueByLead {
		ranked = append(ranked, domain.LeadValue{LeadID: id, Name: leadNames[id], Value: value})
	}
	// Ties break on lead ID so the ranking is deterministic
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].LeadID.String() < ranked[j].LeadID.String()
	})
	if len(ranked) > topLeadCount {
		ranked = ranked[:topLeadCount]
	}
	dash.TopLeads = ranked

	return dash
}

// KamStats summarizes a KAM's own recent activity for the profile view.
func KamStats(leads []domain.Lead, interactions []domain.Interaction) domain.KamStats {
	stats := domain.KamStats{
		TotalLeads:    len(leads),
		LeadsByStatus: map[domain.LeadStatus]int{},
	}
	for _, lead := range leads {
		stats.LeadsByStatus[lead.Status]++
	}
	for _, in := range interactions {
		switch in.Type {
		case domain.InteractionTypeCall:
			stats.TotalCalls++
		case domain.InteractionTypeOrder:
			stats.TotalOrders++
			stats.TotalValue += in.OrderValue
		case domain.InteractionTypeMeeting:
			stats.TotalMeetings++
		}
	}
	if len(leads) > 0 {
		stats.ConversionRate = float64(stats.LeadsByStatus[domain.LeadStatusConverted]) / float64(len(leads)) * 100
	}
	return stats
}

// windowLengthDays converts a window to whole days, never below one so
// rate figures cannot divide by zero.
func windowLengthDays(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
