package agent

// Host describes a podcast co-host whose persona the personalize agent
// weaves into the final script.
type Host struct {
	Name        string
	Voice       string
	Description string
}

// DefaultHosts are the co-hosts of the Mohonk Stories show.
func DefaultHosts() []Host {
	return []Host{
		{
			Name:  "Bob",
			Voice: "onyx",
			Description: "Bob is a co-host of the Mohonk Stories podcast. " +
				"He grew up in Brooklyn but now lives in New Paltz, NY. " +
				"Bob works as a dentist and does podcasting on the side for fun. " +
				"He's an avid reader and a big fan of the New York Yankees.",
		},
		{
			Name:  "Carolyn",
			Voice: "shimmer",
			Description: "Carolyn is a co-host of the Mohonk Stories podcast. " +
				"She grew up in Dry Ridge, Kentucky but now resides in New Paltz, NY. " +
				"Carolyn works as a school teacher. " +
				"She's an avid reader with a particular interest in true crime stories.",
		},
	}
}
