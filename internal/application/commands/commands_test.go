package commands

import (
	"time"

	"geolog/internal/domain"
)

type fixedSource struct {
	fix domain.Fix
	ok  bool
}

func (s *fixedSource) CurrentFix() (domain.Fix, bool) {
	return s.fix, s.ok
}

var taipei = domain.Fix{
	Latitude:           25.03,
	Longitude:          121.56,
	HorizontalAccuracy: 5,
	Timestamp:          time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
}

func newSession() (*domain.SessionLog, *fixedSource) {
	src := &fixedSource{fix: taipei, ok: true}
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	clock := func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
	return domain.NewSessionLog(src, clock), src
}

func mustAppend(log *domain.SessionLog, category domain.Category, value float64) {
	v := value
	if !log.Append(category, &v, nil) {
		panic("append rejected")
	}
}
