package http

import "time"

const dateLayout = "2006-01-02"

// timeOnly marshals as a bare calendar date. Attendance days, birth dates and
// due dates carry no meaningful time component.
type timeOnly time.Time

func (t timeOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(dateLayout) + `"`), nil
}

func (t *timeOnly) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return err
	}
	*t = timeOnly(parsed)
	return nil
}

func newTimeOnly(t *time.Time) *timeOnly {
	if t == nil {
		return nil
	}
	converted := timeOnly(*t)
	return &converted
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}
