package textfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoSchedule is the literal stored for a task without a time range.
const NoSchedule = "SIN HORARIO"

var (
	rangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)
	nonePattern  = regexp.MustCompile(`(?i)sin\s*horario`)
)

// Schedule is a task's time range, or the no-schedule state.
type Schedule struct {
	Start string
	End   string
	None  bool
}

// ParseSchedule parses "H:MM-H:MM". Empty values, "sin horario" and any
// malformed input yield the no-schedule state. Hours are zero-padded.
func ParseSchedule(v string) Schedule {
	s := strings.TrimSpace(v)
	if s == "" || nonePattern.MatchString(s) {
		return Schedule{None: true}
	}
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return Schedule{None: true}
	}
	return Schedule{
		Start: padHour(m[1]) + ":" + m[2],
		End:   padHour(m[3]) + ":" + m[4],
	}
}

func padHour(h string) string {
	n, err := strconv.Atoi(h)
	if err != nil {
		return h
	}
	return fmt.Sprintf("%02d", n)
}

// String renders the schedule: "SIN HORARIO" when none, "start-end" when
// both ends are set, and "" for an incomplete pair.
func (s Schedule) String() string {
	if s.None {
		return NoSchedule
	}
	if s.Start != "" && s.End != "" {
		return s.Start + "-" + s.End
	}
	return ""
}

// OrNone returns the rendered schedule, falling back to "SIN HORARIO".
func (s Schedule) OrNone() string {
	if out := s.String(); out != "" {
		return out
	}
	return NoSchedule
}

// IsEmptySchedule reports whether a stored value carries no time range
// worth showing on a calendar card.
func IsEmptySchedule(v string) bool {
	t := strings.ToUpper(strings.TrimSpace(v))
	return t == "" || t == "-" || t == NoSchedule
}
