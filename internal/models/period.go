// internal/models/period.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PeriodCode is the canonical vocabulary the semantic validator answers with.
type PeriodCode string

const (
	CodeCurrentMonth       PeriodCode = "CURRENT_MONTH"
	CodeLastMonth          PeriodCode = "LAST_MONTH"
	CodeLast30Days         PeriodCode = "LAST_30_DAYS"
	CodeCurrentWeek        PeriodCode = "CURRENT_WEEK"
	CodeLast7Days          PeriodCode = "LAST_7_DAYS"
	CodeLast3Days          PeriodCode = "LAST_3_DAYS"
	CodeYesterday          PeriodCode = "YESTERDAY"
	CodeDayBeforeYesterday PeriodCode = "DAY_BEFORE_YESTERDAY"
	CodeCurrentYear        PeriodCode = "CURRENT_YEAR"
	CodeLastYear           PeriodCode = "LAST_YEAR"
	CodeHourly             PeriodCode = "HOURLY"
	CodeDaily              PeriodCode = "DAILY"
	CodeWeekly             PeriodCode = "WEEKLY"
	CodeMonthly            PeriodCode = "MONTHLY"
	CodeYearly             PeriodCode = "YEARLY"
	CodeSaturday           PeriodCode = "SATURDAY"
	CodeSunday             PeriodCode = "SUNDAY"
	CodeWeekend            PeriodCode = "WEEKEND"
	CodeUnknown            PeriodCode = "UNKNOWN"
)

// Period is the internal period code consumed by the strategy builder and
// the query executor. Raw day windows are written "<n>d".
type Period string

const (
	PeriodCurrentMonth       Period = "current_month"
	PeriodLastMonth          Period = "last_month"
	PeriodCurrentWeek        Period = "current_week"
	PeriodLastWeek           Period = "last_week"
	PeriodCurrentYear        Period = "current_year"
	PeriodLastYear           Period = "last_year"
	PeriodCurrentDay         Period = "current_day"
	PeriodYesterday          Period = "1d"
	PeriodDayBeforeYesterday Period = "1d_avant_hier"
	Period2Days              Period = "2d"
	Period3Days              Period = "3d"
	Period7Days              Period = "7d"
	Period30Days             Period = "30d"
	Period84Days             Period = "84d"
	Period365Days            Period = "365d"
	Period1825Days           Period = "1825d"
	PeriodHourly             Period = "hourly"
	PeriodDaily              Period = "daily"
	PeriodWeekly             Period = "weekly"
	PeriodMonthly            Period = "monthly"
	PeriodYearly             Period = "yearly"
	PeriodSaturday           Period = "saturday"
	PeriodSunday             Period = "sunday"
	PeriodWeekend            Period = "weekend"
)

var periodCodes = []struct {
	code   PeriodCode
	period Period
	label  string
}{
	{CodeCurrentMonth, PeriodCurrentMonth, "ce mois-ci"},
	{CodeLastMonth, PeriodLastMonth, "le mois dernier"},
	{CodeLast30Days, Period30Days, "les 30 derniers jours"},
	{CodeCurrentWeek, PeriodCurrentWeek, "cette semaine"},
	{CodeLast7Days, Period7Days, "les 7 derniers jours"},
	{CodeLast3Days, Period3Days, "les 3 derniers jours"},
	{CodeYesterday, PeriodYesterday, "hier"},
	{CodeDayBeforeYesterday, PeriodDayBeforeYesterday, "avant-hier"},
	{CodeCurrentYear, PeriodCurrentYear, "cette année"},
	{CodeLastYear, PeriodLastYear, "l'année dernière"},
	{CodeHourly, PeriodHourly, "par heure"},
	{CodeDaily, PeriodDaily, "par jour"},
	{CodeWeekly, PeriodWeekly, "par semaine"},
	{CodeMonthly, PeriodMonthly, "par mois"},
	{CodeYearly, PeriodYearly, "par année"},
	{CodeSaturday, PeriodSaturday, "samedi"},
	{CodeSunday, PeriodSunday, "dimanche"},
	{CodeWeekend, PeriodWeekend, "le weekend"},
}

// PeriodCodes lists the canonical codes in prompt order.
func PeriodCodes() []PeriodCode {
	out := make([]PeriodCode, 0, len(periodCodes))
	for _, pc := range periodCodes {
		out = append(out, pc.code)
	}
	return out
}

// Period returns the internal period mapped to the code.
func (c PeriodCode) Period() (Period, bool) {
	for _, pc := range periodCodes {
		if pc.code == c {
			return pc.period, true
		}
	}
	return "", false
}

// Label is a short French rendering of the code.
func (c PeriodCode) Label() string {
	for _, pc := range periodCodes {
		if pc.code == c {
			return pc.label
		}
	}
	return ""
}

// ParsePeriodCode normalises raw validator output into a code.
func ParsePeriodCode(raw string) (PeriodCode, bool) {
	c := PeriodCode(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := c.Period(); ok {
		return c, true
	}
	return CodeUnknown, false
}

func DaysPeriod(n int) Period {
	return Period(fmt.Sprintf("%dd", n))
}

// Days returns the window length of a raw "<n>d" period.
func (p Period) Days() (int, bool) {
	s := string(p)
	if !strings.HasSuffix(s, "d") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (p Period) IsGranularity() bool {
	switch p {
	case PeriodHourly, PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

func (p Period) IsNamedDay() bool {
	return p == PeriodSaturday || p == PeriodSunday || p == PeriodWeekend
}

// IsCalendar reports whether the period is a calendar month or year.
func (p Period) IsCalendar() bool {
	switch p {
	case PeriodCurrentMonth, PeriodLastMonth, PeriodCurrentYear, PeriodLastYear:
		return true
	}
	return false
}

// Granularity is the French bucket name used for averages.
type Granularity string

const (
	GranularityHour  Granularity = "heure"
	GranularityDay   Granularity = "jour"
	GranularityWeek  Granularity = "semaine"
	GranularityMonth Granularity = "mois"
	GranularityYear  Granularity = "année"
)

// Unit is the kWh-per-bucket unit of an average.
func (g Granularity) Unit() string {
	switch g {
	case GranularityHour:
		return "kWh/h"
	case GranularityWeek:
		return "kWh/semaine"
	case GranularityMonth:
		return "kWh/mois"
	case GranularityYear:
		return "kWh/an"
	default:
		return "kWh/jour"
	}
}
