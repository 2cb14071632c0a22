package export

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/ChurchCal/internal/datecodec"
	"github.com/Kerhoff/ChurchCal/internal/models"
)

var kst = time.FixedZone("KST", 9*60*60)

func sample() []models.Event {
	return []models.Event{
		{
			ID: "b",
			DraftEvent: models.DraftEvent{
				Title:       "주일예배",
				Date:        datecodec.MustNew(2025, time.October, 5),
				StartTime:   "11:00",
				EndTime:     "12:30",
				Category:    models.CategoryWorship,
				Location:    "나주교회",
				Description: `설교: "빛과 소금", 2부`,
				Reminder:    30,
				Recurring:   models.RecurrenceWeekly,
			},
		},
		{
			ID: "a",
			DraftEvent: models.DraftEvent{
				Title:    "전도 축제",
				Date:     datecodec.MustNew(2025, time.October, 1),
				Category: models.CategoryEvangelism,
				IsAllDay: true,
			},
		},
	}
}

func TestCSV(t *testing.T) {
	out := CSV(sample())
	require.True(t, strings.HasPrefix(out, "\uFEFF"))

	lines := strings.Split(strings.TrimPrefix(out, "\uFEFF"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "날짜,제목,카테고리,시작시간,종료시간,장소,설명,종일,알림,반복", lines[0])
	assert.Equal(t, `2025-10-05,주일예배,예배/인맞음,11:00,12:30,나주교회,"설교: ""빛과 소금"", 2부",아니오,30,weekly`, lines[1])
	assert.Equal(t, "2025-10-01,전도 축제,전도부,,,,,예,,", lines[2])
}

func TestCSVEmpty(t *testing.T) {
	assert.Equal(t, "\uFEFF날짜,제목,카테고리,시작시간,종료시간,장소,설명,종일,알림,반복", CSV(nil))
}

func TestEscapeCSV(t *testing.T) {
	assert.Equal(t, "plain", escapeCSV("plain"))
	assert.Equal(t, `"a,b"`, escapeCSV("a,b"))
	assert.Equal(t, "\"line\nbreak\"", escapeCSV("line\nbreak"))
	assert.Equal(t, `"say ""hi"""`, escapeCSV(`say "hi"`))
	assert.Equal(t, "", escapeCSV(""))
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "church_events.csv", CSVFilename(nil))
	assert.Equal(t, "나주교회_일정_20251001_20251005.csv", CSVFilename(sample()))
}

func TestICS(t *testing.T) {
	events := sample()
	events[0].UpdatedAt = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	out := ICS("나주교회 일정", events, kst)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	vevents := cal.Events()
	require.Len(t, vevents, 2)

	worship := vevents[0]
	assert.Equal(t, "주일예배", worship.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "b@churchcal", worship.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "20251005T020000Z", worship.GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20251005T033000Z", worship.GetProperty(ical.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "FREQ=WEEKLY", worship.GetProperty(ical.ComponentPropertyRrule).Value)
	assert.Equal(t, "나주교회", worship.GetProperty(ical.ComponentPropertyLocation).Value)

	festival := vevents[1]
	assert.Equal(t, "20251001", festival.GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20251002", festival.GetProperty(ical.ComponentPropertyDtEnd).Value)
	assert.Nil(t, festival.GetProperty(ical.ComponentPropertyRrule))
}
