package league

import "fmt"

// SeasonKind tells how the provider spells a league's season parameter.
type SeasonKind string

const (
	SeasonSplit    SeasonKind = "SPLIT"
	SeasonCalendar SeasonKind = "CALENDAR"
)

// League is one entry of the tracked league catalog.
type League struct {
	Name       string
	ProviderID string
	SeasonKind SeasonKind
}

// Seasons holds the season strings sent to the provider for each kind.
type Seasons struct {
	Split    string
	Calendar string
}

func DefaultSeasons() Seasons {
	return Seasons{
		Split:    "2025-2026",
		Calendar: "2025",
	}
}

// SeasonFor resolves the season query value for a league.
func (s Seasons) SeasonFor(l League) string {
	if l.SeasonKind == SeasonCalendar {
		return s.Calendar
	}
	return s.Split
}

func (l League) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.ProviderID == "" {
		return fmt.Errorf("league provider id is required")
	}
	switch l.SeasonKind {
	case SeasonSplit, SeasonCalendar:
	default:
		return fmt.Errorf("league %q has unknown season kind %q", l.Name, l.SeasonKind)
	}

	return nil
}
