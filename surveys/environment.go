package surveys

// Environment describes the visitor context surveys are matched against.
// The second return reports whether the value is known; evaluators treat
// unknown as a non-match.
type Environment interface {
	CurrentURL() (string, bool)
	DeviceType() (string, bool)
	// SelectorExists reports whether the CSS selector resolves to at least
	// one element in the visitor's document.
	SelectorExists(selector string) bool
}

// nowhere is the Environment used when none is configured: nothing is known,
// so every configured condition fails closed.
type nowhere struct{}

func (nowhere) CurrentURL() (string, bool) { return "", false }
func (nowhere) DeviceType() (string, bool) { return "", false }
func (nowhere) SelectorExists(string) bool { return false }
