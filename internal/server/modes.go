package server

// Mode is one practice mode offered by the client.
type Mode struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

var modes = []Mode{
	{Name: "speed", Title: "На скорость"},
	{Name: "hard", Title: "Сложный"},
	{Name: "marathon", Title: "Марафон"},
}

func findMode(name string) (Mode, bool) {
	for _, m := range modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}
