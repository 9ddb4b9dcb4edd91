package teams

// Lookup tables for historical exceptions. New exceptions are added as
// table rows; bump TablesVersion whenever a row changes.

// TablesVersion identifies the revision of the tables below
const TablesVersion = 3

// keyFixes repairs artifacts that title casing introduces into collection keys
var keyFixes = []struct {
	From string
	To   string
}{
	{"49Ers", "49ers"},
}

// legacyNames maps franchise names used by the scrape source in earlier
// seasons to the name carried by the team reference file.
var legacyNames = map[string]string{
	"St. Louis Rams":           "Los Angeles Rams",
	"San Diego Chargers":       "Los Angeles Chargers",
	"Oakland Raiders":          "Las Vegas Raiders",
	"Washington Redskins":      "Washington Commanders",
	"Washington Football Team": "Washington Commanders",
}

// logoOverrides pins the logo shown for a historical display name,
// regardless of the logo the reference file holds for that team id.
var logoOverrides = map[string]string{
	"Washington Redskins": "https://content.sportslogos.net/logos/7/168/full/im5xz2q9bjbg44xep08bf5czq.png",
}
