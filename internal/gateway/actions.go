package gateway

// Wire action identifiers accepted by the gateway server.
const (
	ActionTitle             = "generateTitle"
	ActionPlot              = "generatePlot"
	ActionTrailerScript     = "generateTrailerScript"
	ActionPosterDescription = "generatePosterDescription"
	ActionPosterImage       = "generatePosterImage"
	ActionTrailerAudio      = "generateTrailerAudio"
	ActionConcepts          = "generateConcepts"
)

// Actions lists every known action identifier.
var Actions = []string{
	ActionTitle,
	ActionPlot,
	ActionTrailerScript,
	ActionPosterDescription,
	ActionPosterImage,
	ActionTrailerAudio,
	ActionConcepts,
}

// KnownAction reports whether name is a recognized action identifier.
func KnownAction(name string) bool {
	for _, a := range Actions {
		if a == name {
			return true
		}
	}
	return false
}

// MediaAction reports whether the action belongs to the slow class (image or
// audio synthesis) and therefore gets the wider deadlines.
func MediaAction(name string) bool {
	return name == ActionPosterImage || name == ActionTrailerAudio
}
