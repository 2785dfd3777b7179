package league

var calendarSeasonLeagues = map[string]struct{}{
	"K League 1 (KOR)":  {},
	"J1 League (JPN)":   {},
	"J2 League (JPN)":   {},
	"MLS (USA)":         {},
	"Brazil Serie A":    {},
	"Primera Argentina": {},
	"Eliteserien (NOR)": {},
	"Russian Premier":   {},
	"Liga MX (MEX)":     {},
	"Concacaf Nations":  {},
}

// Catalog returns the tracked leagues in display order.
func Catalog() []League {
	entries := []struct {
		name string
		id   string
	}{
		{"EPL (ENG)", "4328"},
		{"La Liga (ESP)", "4335"},
		{"Bundesliga (GER)", "4331"},
		{"Serie A (ITA)", "4332"},
		{"Ligue 1 (FRA)", "4334"},
		{"Eredivisie (NED)", "4337"},
		{"Primeira Liga (POR)", "4344"},
		{"Super Lig (TUR)", "4339"},
		{"Russian Premier", "4355"},
		{"Superliga (DEN)", "4340"},
		{"Eliteserien (NOR)", "4358"},
		{"Scottish Prem", "4330"},
		{"Championship (ENG)", "4329"},
		{"La Liga 2 (ESP)", "4361"},
		{"2. Bundesliga (GER)", "4399"},
		{"Serie B (ITA)", "4394"},
		{"Ligue 2 (FRA)", "4401"},
		{"UCL (Champions)", "4480"},
		{"UEL (Europa)", "4481"},
		{"UECL (Conf)", "4857"},
		{"K League 1 (KOR)", "4689"},
		{"J1 League (JPN)", "4633"},
		{"J2 League (JPN)", "4824"},
		{"Saudi Pro League", "4668"},
		{"Indian Super League", "4791"},
		{"A-League (AUS)", "4356"},
		{"Brazil Serie A", "4351"},
		{"Primera Argentina", "4406"},
		{"MLS (USA)", "4346"},
		{"Liga MX (MEX)", "4350"},
		{"Concacaf Nations", "4866"},
	}

	out := make([]League, 0, len(entries))
	for _, e := range entries {
		kind := SeasonSplit
		if _, ok := calendarSeasonLeagues[e.name]; ok {
			kind = SeasonCalendar
		}
		out = append(out, League{Name: e.name, ProviderID: e.id, SeasonKind: kind})
	}
	return out
}

// Names lists catalog names in display order.
func Names(leagues []League) []string {
	out := make([]string, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, l.Name)
	}
	return out
}
