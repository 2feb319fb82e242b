package analytics_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/analytics"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(leadID uuid.UUID, at time.Time, value float64) domain.Interaction {
	return domain.Interaction{
		ID:         uuid.New(),
		LeadID:     leadID,
		Type:       domain.InteractionTypeOrder,
		OrderValue: value,
		CreatedAt:  at,
	}
}

func call(leadID uuid.UUID, at time.Time) domain.Interaction {
	return domain.Interaction{
		ID:        uuid.New(),
		LeadID:    leadID,
		Type:      domain.InteractionTypeCall,
		CreatedAt: at,
	}
}

func TestLeadMetrics_ThirtyDayExample(t *testing.T) {
	leadID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	interactions := []domain.Interaction{
		order(leadID, start.AddDate(0, 0, 2), 10),
		order(leadID, start.AddDate(0, 0, 10), 20),
		order(leadID, start.AddDate(0, 0, 20), 30),
	}

	perf := analytics.LeadMetrics(interactions, start, end, time.UTC)

	assert.Equal(t, 3, perf.TotalOrders)
	assert.Equal(t, 60.0, perf.TotalValue)
	assert.Equal(t, 20.0, perf.AverageOrderValue)
	assert.InDelta(t, 0.1, perf.OrderFrequency, 1e-9)
	assert.Equal(t, 30, perf.WindowDays)
	assert.Equal(t, 3, perf.DaysWithOrders)
	assert.InDelta(t, 10.0, perf.ConsistencyPercent, 1e-9)
	// Gaps: 8 days and 10 days -> average 9
	assert.InDelta(t, 9.0, perf.AverageOrderGapDays, 1e-9)
}

func TestLeadMetrics_EmptyWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	perf := analytics.LeadMetrics(nil, start, end, time.UTC)

	assert.Zero(t, perf.TotalOrders)
	assert.Zero(t, perf.AverageOrderValue)
	assert.Zero(t, perf.OrderFrequency)
	assert.Zero(t, perf.AverageOrderGapDays)
	assert.Zero(t, perf.ConsistencyPercent)
	// The window still reports its (single, empty) opening week
	require.Len(t, perf.WeeklyTrends, 1)
	assert.Equal(t, "2024-03-01", perf.WeeklyTrends[0].WeekStart)
}

func TestLeadMetrics_IgnoresOutOfWindowAndNonOrders(t *testing.T) {
	leadID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	interactions := []domain.Interaction{
		order(leadID, start.AddDate(0, 0, -1), 99), // before window
		call(leadID, start.AddDate(0, 0, 5)),
		order(leadID, start.AddDate(0, 0, 5), 40),
		order(leadID, end.AddDate(0, 0, 1), 99), // after window
	}

	perf := analytics.LeadMetrics(interactions, start, end, time.UTC)
	assert.Equal(t, 1, perf.TotalOrders)
	assert.Equal(t, 40.0, perf.TotalValue)
}

func TestLeadMetrics_WeekdayBucketsUseLocation(t *testing.T) {
	leadID := uuid.New()
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	// Saturday 2024-03-02 20:00 UTC is Sunday 05:00 in Tokyo
	at := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	utcPerf := analytics.LeadMetrics([]domain.Interaction{order(leadID, at, 10)}, start, end, time.UTC)
	assert.Equal(t, 1, utcPerf.OrdersByWeekday[int(time.Saturday)])

	tokyoPerf := analytics.LeadMetrics([]domain.Interaction{order(leadID, at, 10)}, start, end, tokyo)
	assert.Equal(t, 1, tokyoPerf.OrdersByWeekday[int(time.Sunday)])
}

func TestLeadMetrics_WeeklyTrendBuckets(t *testing.T) {
	leadID := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	interactions := []domain.Interaction{
		order(leadID, start.AddDate(0, 0, 1), 10),  // week 1
		order(leadID, start.AddDate(0, 0, 3), 15),  // week 1
		order(leadID, start.AddDate(0, 0, 16), 30), // week 3
	}

	perf := analytics.LeadMetrics(interactions, start, end, time.UTC)
	require.Len(t, perf.WeeklyTrends, 3)

	assert.Equal(t, "2024-03-01", perf.WeeklyTrends[0].WeekStart)
	assert.Equal(t, 2, perf.WeeklyTrends[0].Orders)
	assert.Equal(t, 25.0, perf.WeeklyTrends[0].Value)

	assert.Equal(t, "2024-03-08", perf.WeeklyTrends[1].WeekStart)
	assert.Zero(t, perf.WeeklyTrends[1].Orders)

	assert.Equal(t, "2024-03-15", perf.WeeklyTrends[2].WeekStart)
	assert.Equal(t, 1, perf.WeeklyTrends[2].Orders)
	assert.Equal(t, 30.0, perf.WeeklyTrends[2].Value)
}

func TestKamMetrics_NoLeadsNoDivisionByZero(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	dash := analytics.KamMetrics(nil, nil, start, start.AddDate(0, 0, 30))

	assert.Zero(t, dash.TotalLeads)
	assert.Zero(t, dash.ConversionRate)
	assert.Zero(t, dash.AverageCallsPerLead)
	assert.Zero(t, dash.AverageValuePerLead)
	assert.Empty(t, dash.TopLeads)
}

func TestKamMetrics_Aggregates(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	converted := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Converted", Status: domain.LeadStatusConverted}
	active := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Active", Status: domain.LeadStatusContacted}
	leads := []domain.Lead{converted, active}

	interactions := []domain.Interaction{
		call(converted.ID, start.AddDate(0, 0, 1)),
		call(converted.ID, start.AddDate(0, 0, 4)),
		call(active.ID, start.AddDate(0, 0, 2)),
		order(converted.ID, start.AddDate(0, 0, 5), 100),
		order(active.ID, start.AddDate(0, 0, 6), 50),
		order(active.ID, end.AddDate(0, 0, 2), 999), // outside window
	}

	dash := analytics.KamMetrics(leads, interactions, start, end)

	assert.Equal(t, 2, dash.TotalLeads)
	assert.Equal(t, 1, dash.LeadsByStatus[domain.LeadStatusConverted])
	assert.Equal(t, 1, dash.LeadsByStatus[domain.LeadStatusContacted])
	assert.InDelta(t, 50.0, dash.ConversionRate, 1e-9)
	assert.Equal(t, 3, dash.TotalCalls)
	assert.Equal(t, 2, dash.TotalOrders)
	assert.InDelta(t, 1.5, dash.AverageCallsPerLead, 1e-9)
	assert.InDelta(t, 1.0, dash.AverageOrdersPerLead, 1e-9)
	assert.Equal(t, 150.0, dash.TotalValue)
	assert.Equal(t, 75.0, dash.AverageValuePerLead)

	require.Len(t, dash.TopLeads, 2)
	assert.Equal(t, converted.ID, dash.TopLeads[0].LeadID)
	assert.Equal(t, 100.0, dash.TopLeads[0].Value)
}

func TestKamMetrics_TopLeadsRankingAndTies(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	var leads []domain.Lead
	var interactions []domain.Interaction
	// Seven leads with values 70..10: only the top five make the list
	for i := 0; i < 7; i++ {
		lead := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Status: domain.LeadStatusNew}
		leads = append(leads, lead)
		interactions = append(interactions, order(lead.ID, start.AddDate(0, 0, i+1), float64(70-10*i)))
	}

	dash := analytics.KamMetrics(leads, interactions, start, end)
	require.Len(t, dash.TopLeads, 5)
	assert.Equal(t, 70.0, dash.TopLeads[0].Value)
	assert.Equal(t, 30.0, dash.TopLeads[4].Value)

	// Equal values order by lead ID for a stable ranking
	a := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Status: domain.LeadStatusNew}
	b := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Status: domain.LeadStatusNew}
	tied := analytics.KamMetrics(
		[]domain.Lead{a, b},
		[]domain.Interaction{
			order(a.ID, start.AddDate(0, 0, 1), 40),
			order(b.ID, start.AddDate(0, 0, 2), 40),
		},
		start, end,
	)
	require.Len(t, tied.TopLeads, 2)
	assert.Less(t, tied.TopLeads[0].LeadID.String(), tied.TopLeads[1].LeadID.String())
}

func TestKamStats(t *testing.T) {
	lead := domain.Lead{BaseModel: domain.BaseModel{ID: uuid.New()}, Status: domain.LeadStatusConverted}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	stats := analytics.KamStats(
		[]domain.Lead{lead},
		[]domain.Interaction{
			call(lead.ID, now),
			order(lead.ID, now, 25),
			{ID: uuid.New(), LeadID: lead.ID, Type: domain.InteractionTypeMeeting, CreatedAt: now},
		},
	)

	assert.Equal(t, 1, stats.TotalLeads)
	assert.Equal(t, 1, stats.TotalCalls)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalMeetings)
	assert.Equal(t, 25.0, stats.TotalValue)
	assert.InDelta(t, 100.0, stats.ConversionRate, 1e-9)
}
