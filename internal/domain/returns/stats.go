package returns

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsRow is the projection of a record needed for reporting
type StatsRow struct {
	Status         ReturnStatus
	ReturnCategory ReturnCategory
	SourceType     SourceType
	ResolutionType ResolutionType
	LocationID     uuid.UUID
	ReturnReason   string
	Quantity       int
	ProductValue   decimal.Decimal
	RefundAmount   *decimal.Decimal
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Stats is the headline summary for a scope
type Stats struct {
	Total                  int64                    `json:"total"`
	ByStatus               map[ReturnStatus]int64   `json:"by_status"`
	ByCategory             map[ReturnCategory]int64 `json:"by_category"`
	TotalValue             decimal.Decimal          `json:"total_value"`
	TotalRefundAmount      decimal.Decimal          `json:"total_refund_amount"`
	AverageProcessingHours float64                  `json:"average_processing_hours"`
}

// AggregateStats folds rows into a Stats summary.
// Cancelled returns are excluded from total value. Only refunds that reached
// PROCESSING or COMPLETED count toward the refund total. Average processing
// time covers COMPLETED records and is zero when there are none.
func AggregateStats(rows []StatsRow) Stats {
	s := Stats{
		ByStatus:          make(map[ReturnStatus]int64),
		ByCategory:        make(map[ReturnCategory]int64),
		TotalValue:        decimal.Zero,
		TotalRefundAmount: decimal.Zero,
	}

	var totalProcessing time.Duration
	var completed int64
	for _, row := range rows {
		s.Total++
		s.ByStatus[row.Status]++
		s.ByCategory[row.ReturnCategory]++

		if row.Status != StatusCancelled {
			s.TotalValue = s.TotalValue.Add(row.ProductValue.Mul(decimal.NewFromInt(int64(row.Quantity))))
		}
		if row.ResolutionType == ResolutionRefundProcessed && row.RefundAmount != nil &&
			(row.Status == StatusProcessing || row.Status == StatusCompleted) {
			s.TotalRefundAmount = s.TotalRefundAmount.Add(*row.RefundAmount)
		}
		if row.Status == StatusCompleted && row.CompletedAt != nil {
			totalProcessing += row.CompletedAt.Sub(row.CreatedAt)
			completed++
		}
	}

	if completed > 0 {
		s.AverageProcessingHours = (totalProcessing / time.Duration(completed)).Hours()
	}
	return s
}

// DailyCount is the number of returns created on one calendar day (UTC)
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ReasonCount is how often a free-text return reason appeared
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int64  `json:"count"`
}

// Analytics breaks a scope down beyond the headline stats
type Analytics struct {
	Stats
	BySourceType     map[SourceType]int64     `json:"by_source_type"`
	ByResolutionType map[ResolutionType]int64 `json:"by_resolution_type"`
	ByLocation       map[string]int64         `json:"by_location"`
	DailyTrend       []DailyCount             `json:"daily_trend"`
	TopReasons       []ReasonCount            `json:"top_reasons"`
	ApprovalRate     float64                  `json:"approval_rate"`
	RejectionRate    float64                  `json:"rejection_rate"`
}

const topReasonLimit = 5

// AggregateAnalytics folds rows into the analytics breakdown
func AggregateAnalytics(rows []StatsRow) Analytics {
	a := Analytics{
		Stats:            AggregateStats(rows),
		BySourceType:     make(map[SourceType]int64),
		ByResolutionType: make(map[ResolutionType]int64),
		ByLocation:       make(map[string]int64),
		DailyTrend:       []DailyCount{},
		TopReasons:       []ReasonCount{},
	}

	daily := make(map[string]int64)
	reasons := make(map[string]int64)
	reasonLabels := make(map[string]string)
	var decided, approved, rejected int64

	for _, row := range rows {
		a.BySourceType[row.SourceType]++
		if row.ResolutionType != "" {
			a.ByResolutionType[row.ResolutionType]++
		}
		a.ByLocation[row.LocationID.String()]++
		daily[row.CreatedAt.UTC().Format("2006-01-02")]++

		if reason := strings.TrimSpace(row.ReturnReason); reason != "" {
			key := strings.ToLower(reason)
			reasons[key]++
			if _, ok := reasonLabels[key]; !ok {
				reasonLabels[key] = reason
			}
		}

		if row.Status.IsDecided() {
			decided++
			if row.Status == StatusRejected {
				rejected++
			} else {
				approved++
			}
		}
	}

	for date, count := range daily {
		a.DailyTrend = append(a.DailyTrend, DailyCount{Date: date, Count: count})
	}
	sort.Slice(a.DailyTrend, func(i, j int) bool { return a.DailyTrend[i].Date < a.DailyTrend[j].Date })

	for key, count := range reasons {
		a.TopReasons = append(a.TopReasons, ReasonCount{Reason: reasonLabels[key], Count: count})
	}
	sort.Slice(a.TopReasons, func(i, j int) bool {
		if a.TopReasons[i].Count != a.TopReasons[j].Count {
			return a.TopReasons[i].Count > a.TopReasons[j].Count
		}
		return a.TopReasons[i].Reason < a.TopReasons[j].Reason
	})
	if len(a.TopReasons) > topReasonLimit {
		a.TopReasons = a.TopReasons[:topReasonLimit]
	}

	if decided > 0 {
		a.ApprovalRate = float64(approved) / float64(decided)
		a.RejectionRate = float64(rejected) / float64(decided)
	}
	return a
}
