package studio

// isMouseEscapeLeak reports mouse escape sequences that reached the program
// as key input instead of tea.MouseMsg. Terminals do this during fast
// trackpad scrolling when cell motion tracking is on. SGR, X11 and URXVT
// encodings are recognised.
func isMouseEscapeLeak(s string) bool {
	if len(s) >= 5 && s[0] == '<' && (s[len(s)-1] == 'M' || s[len(s)-1] == 'm') {
		return digitsAndSemicolons(s[1 : len(s)-1])
	}
	if len(s) >= 2 && s[0] == '[' && (s[1] == 'M' || s[1] == 'm') {
		return true
	}
	if len(s) >= 5 && s[0] == '[' && s[len(s)-1] == 'M' {
		return digitsAndSemicolons(s[1 : len(s)-1])
	}
	return false
}

func digitsAndSemicolons(s string) bool {
	for _, r := range s {
		if r != ';' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
