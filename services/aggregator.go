package services

import (
	"sort"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InRange reports whether date lies in the closed interval [start, end].
// Canonical YYYY-MM-DD strings sort like the calendar, so plain string
// comparison is enough.
func InRange(date, start, end utils.Date) bool {
	return start <= date && date <= end
}

// FilterByRange keeps the records dated inside [start, end], preserving order.
func FilterByRange(records []models.Delivery, start, end utils.Date) []models.Delivery {
	out := make([]models.Delivery, 0, len(records))
	for _, r := range records {
		if InRange(r.ServiceDate, start, end) {
			out = append(out, r)
		}
	}
	return out
}

// SortByServiceDateDesc orders records newest first; createdAt breaks ties.
func SortByServiceDateDesc(records []models.Delivery) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ServiceDate != records[j].ServiceDate {
			return records[i].ServiceDate > records[j].ServiceDate
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

// SumAmounts adds amounts with exact decimal arithmetic.
func SumAmounts(records []models.Delivery) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// BuildRangeReport filters records to [start, end], totals them per owner
// and overall. Owner totals are ordered by total descending, then by owner
// id ascending when totals are equal.
// Start and end must already be canonical; start > end matches nothing.
func BuildRangeReport(records []models.Delivery, start, end utils.Date) models.RangeReport {
	included := FilterByRange(records, start, end)
	SortByServiceDateDesc(included)

	byOwner := make(map[uuid.UUID]*models.OwnerTotal)
	grand := decimal.Zero
	for _, r := range included {
		ot, ok := byOwner[r.OwnerID]
		if !ok {
			ot = &models.OwnerTotal{OwnerID: r.OwnerID, Total: decimal.Zero}
			byOwner[r.OwnerID] = ot
		}
		ot.Total = ot.Total.Add(r.Amount)
		ot.Count++
		grand = grand.Add(r.Amount)
	}

	totals := make([]models.OwnerTotal, 0, len(byOwner))
	for _, ot := range byOwner {
		totals = append(totals, *ot)
	}
	sort.Slice(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].OwnerID.String() < totals[j].OwnerID.String()
	})

	return models.RangeReport{
		StartDate:   start,
		EndDate:     end,
		Records:     included,
		OwnerTotals: totals,
		GrandTotal:  grand,
	}
}

// BuildPersonalReport is the single-owner view of BuildRangeReport.
func BuildPersonalReport(records []models.Delivery, start, end utils.Date) models.PersonalReport {
	included := FilterByRange(records, start, end)
	SortByServiceDateDesc(included)
	return models.PersonalReport{
		StartDate:  start,
		EndDate:    end,
		Records:    included,
		GrandTotal: SumAmounts(included),
	}
}
