package schedule

import (
	"reflect"
	"testing"

	"github.com/cedricdebailleul/abcbedarieuxv2-sub004/pkg/enums"
)

func str(v string) *string { return &v }

func TestNormalizeClosedDayIgnoresTimes(t *testing.T) {
	t.Parallel()

	entries, drops := Normalize([]DayInput{
		{DayOfWeek: "MONDAY", IsClosed: true, OpenTime: str("09:00")},
	})
	if len(drops) != 0 {
		t.Fatalf("unexpected drops %#v", drops)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one row, got %d", len(entries))
	}
	got := entries[0]
	if got.DayOfWeek != enums.Monday || !got.IsClosed || got.OpenTime != nil || got.CloseTime != nil {
		t.Fatalf("unexpected closed row %#v", got)
	}
}

func TestNormalizeClosedDayIgnoresSlots(t *testing.T) {
	t.Parallel()

	entries, _ := Normalize([]DayInput{{
		DayOfWeek: "sunday",
		IsClosed:  true,
		Slots:     []SlotInput{{OpenTime: str("10:00"), CloseTime: str("12:00")}},
	}})
	if len(entries) != 1 || !entries[0].IsClosed {
		t.Fatalf("expected a single closed row, got %#v", entries)
	}
}

func TestNormalizeSplitShift(t *testing.T) {
	t.Parallel()

	entries, drops := Normalize([]DayInput{{
		DayOfWeek: "TUESDAY",
		Slots: []SlotInput{
			{OpenTime: str("09:00"), CloseTime: str("12:00")},
			{OpenTime: str("14:00"), CloseTime: str("18:00")},
		},
	}})
	if len(drops) != 0 {
		t.Fatalf("unexpected drops %#v", drops)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two rows, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.DayOfWeek != enums.Tuesday || entry.IsClosed {
			t.Fatalf("unexpected row %#v", entry)
		}
	}
	if *entries[1].OpenTime != "14:00" || *entries[1].CloseTime != "18:00" {
		t.Fatalf("unexpected second slot %#v", entries[1])
	}
}

func TestNormalizeDropsIncompletePair(t *testing.T) {
	t.Parallel()

	entries, drops := Normalize([]DayInput{{DayOfWeek: "FRIDAY", OpenTime: str("09:00")}})
	if len(entries) != 0 {
		t.Fatalf("expected no rows for FRIDAY, got %#v", entries)
	}
	if len(drops) != 1 || drops[0].Reason != ReasonMissingTime {
		t.Fatalf("expected missing time drop, got %#v", drops)
	}
}

func TestNormalizeDropReasons(t *testing.T) {
	t.Parallel()

	_, drops := Normalize([]DayInput{
		{DayOfWeek: "FUNDAY", OpenTime: str("09:00"), CloseTime: str("10:00")},
		{DayOfWeek: "MONDAY", OpenTime: str("9h"), CloseTime: str("10:00")},
		{DayOfWeek: "MONDAY", OpenTime: str("18:00"), CloseTime: str("09:00")},
		{DayOfWeek: "MONDAY"},
		{DayOfWeek: "MONDAY", Slots: []SlotInput{{OpenTime: str(" "), CloseTime: str("10:00")}}},
	})

	want := []string{ReasonUnknownDay, ReasonInvalidTime, ReasonInvertedRange, ReasonEmptyDay, ReasonMissingTime}
	if len(drops) != len(want) {
		t.Fatalf("expected %d drops, got %#v", len(want), drops)
	}
	for i, reason := range want {
		if drops[i].Reason != reason || drops[i].Index != i {
			t.Fatalf("drop %d = %#v, want reason %s", i, drops[i], reason)
		}
	}
}

func TestNormalizeCanonicalizesTimesAndDayCase(t *testing.T) {
	t.Parallel()

	entries, _ := Normalize([]DayInput{
		{DayOfWeek: " wednesday ", OpenTime: str("8:30"), CloseTime: str("17:15:00")},
	})
	if len(entries) != 1 {
		t.Fatalf("expected one row, got %d", len(entries))
	}
	if entries[0].DayOfWeek != enums.Wednesday || *entries[0].OpenTime != "08:30" || *entries[0].CloseTime != "17:15" {
		t.Fatalf("unexpected canonical row %#v", entries[0])
	}
}

func TestNormalizeIsIdempotentOnCanonicalRows(t *testing.T) {
	t.Parallel()

	first, _ := Normalize([]DayInput{
		{DayOfWeek: "MONDAY", IsClosed: true},
		{DayOfWeek: "TUESDAY", Slots: []SlotInput{
			{OpenTime: str("09:00"), CloseTime: str("12:00")},
			{OpenTime: str("14:00"), CloseTime: str("18:00")},
		}},
		{DayOfWeek: "SATURDAY", OpenTime: str("10:00"), CloseTime: str("16:00")},
	})

	second, drops := Normalize(FromEntries(first))
	if len(drops) != 0 {
		t.Fatalf("canonical rows should not drop, got %#v", drops)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize not idempotent:\nfirst=%#v\nsecond=%#v", first, second)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	entries, drops := Normalize(nil)
	if len(entries) != 0 || len(drops) != 0 {
		t.Fatalf("expected nothing, got %#v %#v", entries, drops)
	}
}

func TestNormalizeClosedDayWinsOverOtherRows(t *testing.T) {
	t.Parallel()

	entries, drops := Normalize([]DayInput{
		{DayOfWeek: "SUNDAY", OpenTime: str("10:00"), CloseTime: str("12:00")},
		{DayOfWeek: "sunday", IsClosed: true},
		{DayOfWeek: "SUNDAY", IsClosed: true},
		{DayOfWeek: "MONDAY", OpenTime: str("08:00"), CloseTime: str("17:00")},
	})

	if len(entries) != 2 {
		t.Fatalf("expected 2 rows, got %#v", entries)
	}
	if entries[0].DayOfWeek != enums.Sunday || !entries[0].IsClosed || entries[0].OpenTime != nil {
		t.Fatalf("expected a single closed SUNDAY row first, got %#v", entries[0])
	}
	if entries[1].DayOfWeek != enums.Monday {
		t.Fatalf("expected MONDAY kept, got %#v", entries[1])
	}
	if len(drops) != 2 {
		t.Fatalf("expected 2 drops, got %#v", drops)
	}
	for _, drop := range drops {
		if drop.Reason != ReasonDayClosed {
			t.Fatalf("unexpected drop reason %#v", drop)
		}
	}
}
