package models

// Team is one entry of the team reference file
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// TeamsFile is the on-disk shape of the team reference file
type TeamsFile struct {
	Response []Team `json:"response"`
}
